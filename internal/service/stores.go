package service

import (
	"time"

	"kosku/internal/models"
)

// Store interfaces consumed by services; implemented by the gorm
// repositories and by testify mocks in tests.

type UserStore interface {
	Create(u *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByGoogleID(googleID string) (*models.User, error)
	Update(u *models.User) error
}

type PropertyStore interface {
	GetByID(id uint) (*models.Property, error)
}

type RoomStore interface {
	GetByID(id uint) (*models.Room, error)
}

type BookingStore interface {
	GetByID(id uint) (*models.Booking, error)
	Update(b *models.Booking) error
	ListByRenter(renterID uint) ([]models.Booking, error)
	ListByProperty(propertyID uint) ([]models.Booking, error)
	FindConflicts(roomID uint, checkIn, checkOut time.Time, excludeID uint, statuses []string) ([]models.Booking, error)
	CreateIfAvailable(b *models.Booking) ([]models.Booking, error)
}

type PaymentStore interface {
	Create(p *models.Payment) error
	GetByOrderID(orderID string) (*models.Payment, error)
	Update(p *models.Payment) error
	ListByBooking(bookingID uint) ([]models.Payment, error)
	HasInFlight(bookingID uint) (bool, error)
	HasSuccessOfType(bookingID uint, paymentType string) (bool, error)
	UpdateWithBooking(p *models.Payment, b *models.Booking) error
	FindExpiredPending(now time.Time) ([]models.Payment, error)
}

type LedgerStore interface {
	Create(e *models.LedgerEntry) error
}
