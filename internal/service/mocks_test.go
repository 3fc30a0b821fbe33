package service

import (
	"context"
	"time"

	"kosku/internal/models"
	"kosku/pkg/snap"

	"github.com/stretchr/testify/mock"
)

type MockUserStore struct{ mock.Mock }

func (m *MockUserStore) Create(u *models.User) error { return m.Called(u).Error(0) }
func (m *MockUserStore) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *MockUserStore) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *MockUserStore) GetByGoogleID(googleID string) (*models.User, error) {
	args := m.Called(googleID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
func (m *MockUserStore) Update(u *models.User) error { return m.Called(u).Error(0) }

type MockPropertyStore struct{ mock.Mock }

func (m *MockPropertyStore) GetByID(id uint) (*models.Property, error) {
	args := m.Called(id)
	p, _ := args.Get(0).(*models.Property)
	return p, args.Error(1)
}

type MockRoomStore struct{ mock.Mock }

func (m *MockRoomStore) GetByID(id uint) (*models.Room, error) {
	args := m.Called(id)
	r, _ := args.Get(0).(*models.Room)
	return r, args.Error(1)
}

type MockBookingStore struct{ mock.Mock }

func (m *MockBookingStore) GetByID(id uint) (*models.Booking, error) {
	args := m.Called(id)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}
func (m *MockBookingStore) Update(b *models.Booking) error { return m.Called(b).Error(0) }
func (m *MockBookingStore) ListByRenter(renterID uint) ([]models.Booking, error) {
	args := m.Called(renterID)
	bs, _ := args.Get(0).([]models.Booking)
	return bs, args.Error(1)
}
func (m *MockBookingStore) ListByProperty(propertyID uint) ([]models.Booking, error) {
	args := m.Called(propertyID)
	bs, _ := args.Get(0).([]models.Booking)
	return bs, args.Error(1)
}
func (m *MockBookingStore) FindConflicts(roomID uint, checkIn, checkOut time.Time, excludeID uint, statuses []string) ([]models.Booking, error) {
	args := m.Called(roomID, checkIn, checkOut, excludeID, statuses)
	bs, _ := args.Get(0).([]models.Booking)
	return bs, args.Error(1)
}
func (m *MockBookingStore) CreateIfAvailable(b *models.Booking) ([]models.Booking, error) {
	args := m.Called(b)
	bs, _ := args.Get(0).([]models.Booking)
	return bs, args.Error(1)
}

type MockPaymentStore struct{ mock.Mock }

func (m *MockPaymentStore) Create(p *models.Payment) error { return m.Called(p).Error(0) }
func (m *MockPaymentStore) GetByOrderID(orderID string) (*models.Payment, error) {
	args := m.Called(orderID)
	p, _ := args.Get(0).(*models.Payment)
	return p, args.Error(1)
}
func (m *MockPaymentStore) Update(p *models.Payment) error { return m.Called(p).Error(0) }
func (m *MockPaymentStore) ListByBooking(bookingID uint) ([]models.Payment, error) {
	args := m.Called(bookingID)
	ps, _ := args.Get(0).([]models.Payment)
	return ps, args.Error(1)
}
func (m *MockPaymentStore) HasInFlight(bookingID uint) (bool, error) {
	args := m.Called(bookingID)
	return args.Bool(0), args.Error(1)
}
func (m *MockPaymentStore) HasSuccessOfType(bookingID uint, paymentType string) (bool, error) {
	args := m.Called(bookingID, paymentType)
	return args.Bool(0), args.Error(1)
}
func (m *MockPaymentStore) UpdateWithBooking(p *models.Payment, b *models.Booking) error {
	return m.Called(p, b).Error(0)
}
func (m *MockPaymentStore) FindExpiredPending(now time.Time) ([]models.Payment, error) {
	args := m.Called(now)
	ps, _ := args.Get(0).([]models.Payment)
	return ps, args.Error(1)
}

type MockLedgerStore struct{ mock.Mock }

func (m *MockLedgerStore) Create(e *models.LedgerEntry) error { return m.Called(e).Error(0) }

type MockGateway struct{ mock.Mock }

func (m *MockGateway) CreateTransaction(ctx context.Context, order snap.Order) (*snap.Transaction, error) {
	args := m.Called(ctx, order)
	tx, _ := args.Get(0).(*snap.Transaction)
	return tx, args.Error(1)
}

type recordingBroadcaster struct {
	events []BookingEvent
}

func (r *recordingBroadcaster) BroadcastStaff(propertyID uint, payload interface{}) {
	if evt, ok := payload.(BookingEvent); ok {
		r.events = append(r.events, evt)
	}
}
