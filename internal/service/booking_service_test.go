package service

import (
	"context"
	"testing"
	"time"

	"kosku/internal/domain"
	"kosku/internal/models"
	"kosku/pkg/snap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type bookingFixtures struct {
	svc        *BookingService
	bookings   *MockBookingStore
	payments   *MockPaymentStore
	rooms      *MockRoomStore
	properties *MockPropertyStore
	users      *MockUserStore
	gateway    *MockGateway
	rec        *recordingBroadcaster
}

func newBookingFixtures() *bookingFixtures {
	f := &bookingFixtures{
		bookings:   new(MockBookingStore),
		payments:   new(MockPaymentStore),
		rooms:      new(MockRoomStore),
		properties: new(MockPropertyStore),
		users:      new(MockUserStore),
		gateway:    new(MockGateway),
		rec:        &recordingBroadcaster{},
	}
	f.svc = NewBookingService(testConfig(), f.bookings, f.payments, f.rooms, f.properties, f.users, f.gateway, NewEventService(f.rec))
	return f
}

func depositRoom() *models.Room {
	return &models.Room{
		ID:           7,
		PropertyID:   2,
		Number:       "A-12",
		MonthlyPrice: 1_500_000,
		DepositType:  domain.DepositFixed,
		DepositValue: 500_000,
		Available:    true,
	}
}

func tomorrow() time.Time {
	return time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
}

func TestCreateBooking_DepositFlow(t *testing.T) {
	f := newBookingFixtures()
	checkIn := tomorrow()

	f.rooms.On("GetByID", uint(7)).Return(depositRoom(), nil)
	f.bookings.On("CreateIfAvailable", mock.MatchedBy(func(b *models.Booking) bool {
		return b.RoomID == 7 && b.Status == domain.BookingUnpaid &&
			b.TotalAmount == 1_500_000 && b.DepositAmount != nil && *b.DepositAmount == 500_000 &&
			b.CheckOutDate != nil && b.CheckOutDate.Equal(checkIn.AddDate(0, 0, 30))
	})).Return(nil, nil)
	f.users.On("GetByID", uint(42)).Return(&models.User{ID: 42, Name: "Budi", Email: "budi@example.com"}, nil)
	f.payments.On("Create", mock.MatchedBy(func(p *models.Payment) bool {
		return p.Type == domain.PaymentTypeDeposit && p.Amount == 500_000 &&
			p.Status == domain.PaymentPending && p.ExpiresAt != nil
	})).Return(nil)
	f.gateway.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(o snap.Order) bool {
		return o.GrossAmount == 500_000
	})).Return(&snap.Transaction{Token: "tok-1", RedirectURL: "https://pay/tok-1"}, nil)
	f.payments.On("Update", mock.MatchedBy(func(p *models.Payment) bool {
		return p.SnapToken == "tok-1"
	})).Return(nil)

	res, err := f.svc.Create(context.Background(), CreateBookingInput{
		RenterID:      42,
		RoomID:        7,
		CheckInDate:   checkIn,
		LeaseType:     domain.LeaseMonthly,
		DepositOption: DepositOptionDeposit,
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.PaymentToken)
	assert.Equal(t, "https://pay/tok-1", res.RedirectURL)
	assert.Equal(t, domain.BookingUnpaid, res.Booking.Status)
	require.Len(t, f.rec.events, 1)
	assert.Equal(t, "booking.created", f.rec.events[0].Type)
	f.bookings.AssertExpectations(t)
	f.payments.AssertExpectations(t)
}

func TestCreateBooking_RoomTaken(t *testing.T) {
	f := newBookingFixtures()

	f.rooms.On("GetByID", uint(7)).Return(depositRoom(), nil)
	f.bookings.On("CreateIfAvailable", mock.Anything).
		Return([]models.Booking{{ID: 9}}, domain.ErrRoomUnavailable)

	_, err := f.svc.Create(context.Background(), CreateBookingInput{
		RenterID: 42, RoomID: 7, CheckInDate: tomorrow(),
		LeaseType: domain.LeaseMonthly, DepositOption: DepositOptionFull,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	f.payments.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateBooking_CodeCollisionRetries(t *testing.T) {
	f := newBookingFixtures()

	f.rooms.On("GetByID", uint(7)).Return(depositRoom(), nil)
	f.bookings.On("CreateIfAvailable", mock.Anything).Return(nil, gorm.ErrDuplicatedKey).Once()
	f.bookings.On("CreateIfAvailable", mock.Anything).Return(nil, nil).Once()
	f.users.On("GetByID", uint(42)).Return(&models.User{ID: 42}, nil)
	f.payments.On("Create", mock.Anything).Return(nil)
	f.gateway.On("CreateTransaction", mock.Anything, mock.Anything).
		Return(&snap.Transaction{Token: "tok"}, nil)
	f.payments.On("Update", mock.Anything).Return(nil)

	_, err := f.svc.Create(context.Background(), CreateBookingInput{
		RenterID: 42, RoomID: 7, CheckInDate: tomorrow(),
		LeaseType: domain.LeaseMonthly, DepositOption: DepositOptionFull,
	})
	require.NoError(t, err)
	f.bookings.AssertNumberOfCalls(t, "CreateIfAvailable", 2)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newBookingFixtures()
	in := CreateBookingInput{RenterID: 42, RoomID: 7, CheckInDate: tomorrow(), LeaseType: domain.LeaseMonthly, DepositOption: DepositOptionFull}

	t.Run("unknown lease type", func(t *testing.T) {
		bad := in
		bad.LeaseType = "HOURLY"
		_, err := f.svc.Create(context.Background(), bad)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
	t.Run("bad deposit option", func(t *testing.T) {
		bad := in
		bad.DepositOption = "half"
		_, err := f.svc.Create(context.Background(), bad)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
	t.Run("check-in in the past", func(t *testing.T) {
		bad := in
		bad.CheckInDate = time.Now().AddDate(0, 0, -2)
		_, err := f.svc.Create(context.Background(), bad)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
	t.Run("deposit option without deposit scheme", func(t *testing.T) {
		room := depositRoom()
		room.DepositType = domain.DepositNone
		room.DepositValue = 0
		f.rooms.On("GetByID", uint(7)).Return(room, nil)
		bad := in
		bad.DepositOption = DepositOptionDeposit
		_, err := f.svc.Create(context.Background(), bad)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCreateBooking_GatewayFailureFailsPayment(t *testing.T) {
	f := newBookingFixtures()

	f.rooms.On("GetByID", uint(7)).Return(depositRoom(), nil)
	f.bookings.On("CreateIfAvailable", mock.Anything).Return(nil, nil)
	f.users.On("GetByID", uint(42)).Return(&models.User{ID: 42}, nil)
	f.payments.On("Create", mock.Anything).Return(nil)
	f.gateway.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	f.payments.On("Update", mock.MatchedBy(func(p *models.Payment) bool {
		return p.Status == domain.PaymentFailed
	})).Return(nil)

	_, err := f.svc.Create(context.Background(), CreateBookingInput{
		RenterID: 42, RoomID: 7, CheckInDate: tomorrow(),
		LeaseType: domain.LeaseMonthly, DepositOption: DepositOptionFull,
	})
	assert.Error(t, err)
	f.payments.AssertExpectations(t)
}

func TestAvailability(t *testing.T) {
	f := newBookingFixtures()
	checkIn := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("conflicting booking reported", func(t *testing.T) {
		f.bookings.On("FindConflicts", uint(7), checkIn, checkOut, uint(0), []string(nil)).
			Return([]models.Booking{{ID: 1, Code: "KOS-A"}}, nil).Once()

		ok, conflicts, err := f.svc.Availability(7, checkIn, checkOut, 0)
		require.NoError(t, err)
		assert.False(t, ok)
		require.Len(t, conflicts, 1)
		assert.Equal(t, "KOS-A", conflicts[0].Code)
	})
	t.Run("disjoint range is free", func(t *testing.T) {
		f.bookings.On("FindConflicts", uint(7), checkIn, checkOut, uint(0), []string(nil)).
			Return(nil, nil).Once()

		ok, conflicts, err := f.svc.Availability(7, checkIn, checkOut, 0)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, conflicts)
	})
	t.Run("inverted range rejected", func(t *testing.T) {
		_, _, err := f.svc.Availability(7, checkOut, checkIn, 0)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestPay_RemainderAfterDeposit(t *testing.T) {
	f := newBookingFixtures()
	dep := 500_000.0
	booking := &models.Booking{
		ID: 5, Code: "KOS-X", RenterID: 42, PropertyID: 2, RoomID: 7,
		Status: domain.BookingDepositPaid, TotalAmount: 1_500_000, DepositAmount: &dep,
	}

	f.bookings.On("GetByID", uint(5)).Return(booking, nil)
	f.payments.On("HasInFlight", uint(5)).Return(false, nil)
	f.rooms.On("GetByID", uint(7)).Return(depositRoom(), nil)
	f.payments.On("HasSuccessOfType", uint(5), domain.PaymentTypeFull).Return(false, nil)
	f.users.On("GetByID", uint(42)).Return(&models.User{ID: 42}, nil)
	f.payments.On("Create", mock.MatchedBy(func(p *models.Payment) bool {
		return p.Type == domain.PaymentTypeFull && p.Amount == 1_000_000
	})).Return(nil)
	f.gateway.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(o snap.Order) bool {
		return o.GrossAmount == 1_000_000
	})).Return(&snap.Transaction{Token: "tok-2"}, nil)
	f.payments.On("Update", mock.Anything).Return(nil)

	res, err := f.svc.Pay(context.Background(), 5, 42, "")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", res.PaymentToken)
	f.payments.AssertExpectations(t)
}

func TestPay_Guards(t *testing.T) {
	t.Run("foreign booking forbidden", func(t *testing.T) {
		f := newBookingFixtures()
		f.bookings.On("GetByID", uint(5)).Return(&models.Booking{ID: 5, RenterID: 1}, nil)
		_, err := f.svc.Pay(context.Background(), 5, 42, "")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
	t.Run("payment already in flight", func(t *testing.T) {
		f := newBookingFixtures()
		f.bookings.On("GetByID", uint(5)).Return(&models.Booking{ID: 5, RenterID: 42, Status: domain.BookingUnpaid}, nil)
		f.payments.On("HasInFlight", uint(5)).Return(true, nil)
		_, err := f.svc.Pay(context.Background(), 5, 42, "")
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
	t.Run("terminal booking rejected", func(t *testing.T) {
		f := newBookingFixtures()
		f.bookings.On("GetByID", uint(5)).Return(&models.Booking{ID: 5, RenterID: 42, Status: domain.BookingCancelled}, nil)
		f.payments.On("HasInFlight", uint(5)).Return(false, nil)
		f.rooms.On("GetByID", uint(0)).Return(depositRoom(), nil)
		_, err := f.svc.Pay(context.Background(), 5, 42, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func staffActor(role string, propertyID uint) *models.User {
	u := &models.User{ID: 99, Role: role}
	if propertyID != 0 {
		u.PropertyID = &propertyID
	}
	return u
}

func TestCheckIn(t *testing.T) {
	t.Run("receptionist checks in confirmed booking", func(t *testing.T) {
		f := newBookingFixtures()
		booking := &models.Booking{ID: 5, PropertyID: 2, Status: domain.BookingConfirmed}
		f.bookings.On("GetByID", uint(5)).Return(booking, nil)
		f.bookings.On("Update", booking).Return(nil)

		got, err := f.svc.CheckIn(CheckInInput{BookingID: 5, Actor: staffActor(domain.RoleReceptionist, 2)})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingCheckedIn, got.Status)
		require.NotNil(t, got.CheckedInBy)
		assert.Equal(t, uint(99), *got.CheckedInBy)
		assert.NotNil(t, got.CheckedInAt)
	})
	t.Run("open-ended stay clears check-out", func(t *testing.T) {
		f := newBookingFixtures()
		out := time.Now().AddDate(0, 0, 30)
		booking := &models.Booking{ID: 5, PropertyID: 2, Status: domain.BookingConfirmed, CheckOutDate: &out}
		f.bookings.On("GetByID", uint(5)).Return(booking, nil)
		f.bookings.On("Update", booking).Return(nil)

		got, err := f.svc.CheckIn(CheckInInput{BookingID: 5, Actor: staffActor(domain.RoleSuperadmin, 0), OpenEnded: true})
		require.NoError(t, err)
		assert.Nil(t, got.CheckOutDate)
	})
	t.Run("receptionist of another property forbidden", func(t *testing.T) {
		f := newBookingFixtures()
		f.bookings.On("GetByID", uint(5)).Return(&models.Booking{ID: 5, PropertyID: 2, Status: domain.BookingConfirmed}, nil)
		_, err := f.svc.CheckIn(CheckInInput{BookingID: 5, Actor: staffActor(domain.RoleReceptionist, 3)})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
	t.Run("owner of another property forbidden", func(t *testing.T) {
		f := newBookingFixtures()
		f.bookings.On("GetByID", uint(5)).Return(&models.Booking{ID: 5, PropertyID: 2, Status: domain.BookingConfirmed}, nil)
		f.properties.On("GetByID", uint(2)).Return(&models.Property{ID: 2, OwnerID: 1}, nil)
		_, err := f.svc.CheckIn(CheckInInput{BookingID: 5, Actor: staffActor(domain.RoleAdminKos, 0)})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
	t.Run("unpaid booking cannot check in", func(t *testing.T) {
		f := newBookingFixtures()
		f.bookings.On("GetByID", uint(5)).Return(&models.Booking{ID: 5, PropertyID: 2, Status: domain.BookingUnpaid}, nil)
		_, err := f.svc.CheckIn(CheckInInput{BookingID: 5, Actor: staffActor(domain.RoleSuperadmin, 0)})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestCheckOut(t *testing.T) {
	f := newBookingFixtures()
	booking := &models.Booking{ID: 5, PropertyID: 2, Status: domain.BookingCheckedIn} // open-ended
	f.bookings.On("GetByID", uint(5)).Return(booking, nil)
	f.bookings.On("Update", booking).Return(nil)

	got, err := f.svc.CheckOut(5, staffActor(domain.RoleReceptionist, 2))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, got.Status)
	require.NotNil(t, got.CheckOutDate) // stamped at check-out for open-ended stays
	assert.NotNil(t, got.CheckedOutAt)
}

func TestCancel(t *testing.T) {
	t.Run("customer cancels own unpaid booking, pending payment fails with it", func(t *testing.T) {
		f := newBookingFixtures()
		booking := &models.Booking{ID: 5, RenterID: 42, PropertyID: 2, Status: domain.BookingUnpaid}
		f.bookings.On("GetByID", uint(5)).Return(booking, nil)
		f.payments.On("ListByBooking", uint(5)).Return([]models.Payment{
			{ID: 1, Status: domain.PaymentFailed},
			{ID: 2, Status: domain.PaymentPending},
		}, nil)
		f.payments.On("UpdateWithBooking", mock.MatchedBy(func(p *models.Payment) bool {
			return p.ID == 2 && p.Status == domain.PaymentFailed
		}), booking).Return(nil)

		got, err := f.svc.Cancel(5, &models.User{ID: 42, Role: domain.RoleCustomer})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingCancelled, got.Status)
	})
	t.Run("customer cannot cancel a paid booking", func(t *testing.T) {
		f := newBookingFixtures()
		f.bookings.On("GetByID", uint(5)).Return(&models.Booking{ID: 5, RenterID: 42, Status: domain.BookingConfirmed}, nil)
		_, err := f.svc.Cancel(5, &models.User{ID: 42, Role: domain.RoleCustomer})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
	t.Run("staff cancels confirmed booking", func(t *testing.T) {
		f := newBookingFixtures()
		booking := &models.Booking{ID: 5, PropertyID: 2, Status: domain.BookingConfirmed}
		f.bookings.On("GetByID", uint(5)).Return(booking, nil)
		f.payments.On("ListByBooking", uint(5)).Return(nil, nil)
		f.bookings.On("Update", booking).Return(nil)

		got, err := f.svc.Cancel(5, staffActor(domain.RoleSuperadmin, 0))
		require.NoError(t, err)
		assert.Equal(t, domain.BookingCancelled, got.Status)
	})
	t.Run("completed booking is immutable", func(t *testing.T) {
		f := newBookingFixtures()
		f.bookings.On("GetByID", uint(5)).Return(&models.Booking{ID: 5, PropertyID: 2, Status: domain.BookingCompleted}, nil)
		_, err := f.svc.Cancel(5, staffActor(domain.RoleSuperadmin, 0))
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}
