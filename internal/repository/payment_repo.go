package repository

import (
	"time"

	"kosku/internal/domain"
	"kosku/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByOrderID(orderID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Update(p *models.Payment) error {
	return r.db.Save(p).Error
}

func (r *PaymentRepository) ListByBooking(bookingID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("booking_id = ?", bookingID).Order("created_at").Find(&payments).Error
	return payments, err
}

// HasInFlight reports whether the booking has a PENDING payment. The platform
// allows at most one non-terminal payment per booking at a time.
func (r *PaymentRepository) HasInFlight(bookingID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.Payment{}).
		Where("booking_id = ? AND status = ?", bookingID, domain.PaymentPending).
		Count(&n).Error
	return n > 0, err
}

// HasSuccessOfType reports whether the booking already has a SUCCESS payment
// of the given type; at most one per type may succeed.
func (r *PaymentRepository) HasSuccessOfType(bookingID uint, paymentType string) (bool, error) {
	var n int64
	err := r.db.Model(&models.Payment{}).
		Where("booking_id = ? AND type = ? AND status = ?", bookingID, paymentType, domain.PaymentSuccess).
		Count(&n).Error
	return n > 0, err
}

// UpdateWithBooking applies the payment and booking updates as one
// transaction so a concurrent reader never observes a settled payment next to
// a stale booking status. Pass a nil booking to update the payment alone.
func (r *PaymentRepository) UpdateWithBooking(p *models.Payment, b *models.Booking) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		if b != nil {
			if err := tx.Save(b).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindExpiredPending returns PENDING payments whose expiry passed, with their
// bookings preloaded for the sweep.
func (r *PaymentRepository) FindExpiredPending(now time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Preload("Booking").
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", domain.PaymentPending, now).
		Find(&payments).Error
	return payments, err
}

// RevenueByProperty sums SUCCESS payment amounts for one property.
func (r *PaymentRepository) RevenueByProperty(propertyID uint) (float64, error) {
	var total float64
	err := r.db.Model(&models.Payment{}).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.property_id = ? AND payments.status = ?", propertyID, domain.PaymentSuccess).
		Select("COALESCE(SUM(payments.amount), 0)").Scan(&total).Error
	return total, err
}
