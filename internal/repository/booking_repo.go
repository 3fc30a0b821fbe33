package repository

import (
	"errors"
	"time"

	"kosku/internal/domain"
	"kosku/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.Preload("Room").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByCode(code string) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.Preload("Room").Where("code = ?", code).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) Update(b *models.Booking) error {
	return r.db.Save(b).Error
}

func (r *BookingRepository) ListByRenter(renterID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Preload("Room").Where("renter_id = ?", renterID).
		Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) ListByProperty(propertyID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Preload("Room").Where("property_id = ?", propertyID).
		Order("created_at DESC").Find(&bookings).Error
	return bookings, err
}

// FindConflicts returns bookings on the room whose status is in statuses and
// whose date range overlaps [checkIn, checkOut) under the half-open interval
// test: existing.checkIn < checkOut AND existing.checkOut > checkIn.
//
// A NULL check-out date marks an open-ended stay (checked in with no exit
// date). It blocks every candidate range ending after its check-in; a range
// that lies entirely at or before the start stays free. The asymmetry is
// deliberate: an open-ended stay cannot conflict with the past.
func (r *BookingRepository) FindConflicts(roomID uint, checkIn, checkOut time.Time, excludeID uint, statuses []string) ([]models.Booking, error) {
	return r.findConflicts(r.db, roomID, checkIn, checkOut, excludeID, statuses, false)
}

func (r *BookingRepository) findConflicts(tx *gorm.DB, roomID uint, checkIn, checkOut time.Time, excludeID uint, statuses []string, forUpdate bool) ([]models.Booking, error) {
	if len(statuses) == 0 {
		statuses = domain.BlockingStatuses
	}
	q := tx.Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", statuses).
		Where("check_in_date < ?", checkOut).
		Where("(check_out_date IS NULL OR check_out_date > ?)", checkIn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var conflicts []models.Booking
	err := q.Find(&conflicts).Error
	return conflicts, err
}

// CreateIfAvailable re-runs the conflict check and inserts the booking inside
// one transaction, locking the conflicting-candidate rows so two concurrent
// requests for the same room cannot both pass the check. Returns
// domain.ErrRoomUnavailable with the conflicting bookings when the room is
// taken, and gorm.ErrDuplicatedKey when the generated code collides.
func (r *BookingRepository) CreateIfAvailable(b *models.Booking) ([]models.Booking, error) {
	if b.CheckOutDate == nil {
		return nil, domain.ErrValidation
	}
	var conflicts []models.Booking
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		conflicts, err = r.findConflicts(tx, b.RoomID, b.CheckInDate, *b.CheckOutDate, 0, domain.BlockingStatuses, true)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return domain.ErrRoomUnavailable
		}
		return tx.Create(b).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return conflicts, err
		}
		return nil, err
	}
	return nil, nil
}

// StatusCounts aggregates bookings per status for one property's dashboard.
func (r *BookingRepository) StatusCounts(propertyID uint) (map[string]int64, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.Model(&models.Booking{}).
		Select("status, COUNT(*) AS n").
		Where("property_id = ?", propertyID).
		Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.N
	}
	return counts, nil
}

// CountOccupied counts rooms of the property blocked at the given instant.
func (r *BookingRepository) CountOccupied(propertyID uint, at time.Time) (int64, error) {
	var n int64
	err := r.db.Model(&models.Booking{}).
		Where("property_id = ?", propertyID).
		Where("status IN ?", domain.BlockingStatuses).
		Where("check_in_date <= ?", at).
		Where("(check_out_date IS NULL OR check_out_date > ?)", at).
		Distinct("room_id").Count(&n).Error
	return n, err
}
