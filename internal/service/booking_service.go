package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kosku/config"
	"kosku/internal/domain"
	"kosku/internal/models"
	"kosku/internal/pricing"
	"kosku/pkg/snap"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DepositOptionDeposit = "deposit"
	DepositOptionFull    = "full"
)

type BookingService struct {
	cfg        *config.Config
	bookings   BookingStore
	payments   PaymentStore
	rooms      RoomStore
	properties PropertyStore
	users      UserStore
	gateway    snap.Gateway
	events     *EventService
}

func NewBookingService(
	cfg *config.Config,
	bookings BookingStore,
	payments PaymentStore,
	rooms RoomStore,
	properties PropertyStore,
	users UserStore,
	gateway snap.Gateway,
	events *EventService,
) *BookingService {
	return &BookingService{
		cfg:        cfg,
		bookings:   bookings,
		payments:   payments,
		rooms:      rooms,
		properties: properties,
		users:      users,
		gateway:    gateway,
		events:     events,
	}
}

type CreateBookingInput struct {
	RenterID      uint
	RoomID        uint
	CheckInDate   time.Time
	LeaseType     string
	DepositOption string // "deposit" | "full"
}

type BookingPayment struct {
	Booking      *models.Booking `json:"booking"`
	Payment      *models.Payment `json:"payment"`
	PaymentToken string          `json:"payment_token"`
	RedirectURL  string          `json:"redirect_url"`
}

// Create reserves a room for a renter: availability check and UNPAID booking
// insert run in one transaction, then a PENDING payment is opened on the
// gateway. A race between two renters is resolved at the insert, not by the
// earlier read.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*BookingPayment, error) {
	if !domain.IsValidLeaseType(in.LeaseType) {
		return nil, fmt.Errorf("%w: unknown lease type %q", domain.ErrValidation, in.LeaseType)
	}
	if in.DepositOption != DepositOptionDeposit && in.DepositOption != DepositOptionFull {
		return nil, fmt.Errorf("%w: deposit option must be deposit or full", domain.ErrValidation)
	}
	today := time.Now().Truncate(24 * time.Hour)
	if in.CheckInDate.Before(today) {
		return nil, fmt.Errorf("%w: check-in date is in the past", domain.ErrValidation)
	}

	room, err := s.rooms.GetByID(in.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !room.Available {
		return nil, domain.ErrRoomUnavailable
	}

	quote, err := pricing.Calculate(room, in.LeaseType)
	if err != nil {
		return nil, err
	}
	if in.DepositOption == DepositOptionDeposit && quote.DepositAmount == nil {
		return nil, fmt.Errorf("%w: room has no deposit scheme", domain.ErrValidation)
	}
	checkOut, err := pricing.CheckOutDate(in.CheckInDate, in.LeaseType)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Code:          domain.NewBookingCode(),
		RenterID:      in.RenterID,
		PropertyID:    room.PropertyID,
		RoomID:        room.ID,
		CheckInDate:   in.CheckInDate,
		CheckOutDate:  &checkOut,
		LeaseType:     in.LeaseType,
		TotalAmount:   quote.TotalAmount,
		DepositAmount: quote.DepositAmount,
		PaymentStatus: domain.PaymentPending,
		Status:        domain.BookingUnpaid,
	}
	if err := s.insertWithRetry(booking); err != nil {
		return nil, err
	}

	amount := quote.TotalAmount
	ptype := domain.PaymentTypeFull
	if in.DepositOption == DepositOptionDeposit {
		amount = *quote.DepositAmount
		ptype = domain.PaymentTypeDeposit
	}
	result, err := s.issuePayment(ctx, booking, room, ptype, amount)
	if err != nil {
		return nil, err
	}
	s.events.Publish(BookingEvent{
		Type:        "booking.created",
		BookingID:   booking.ID,
		BookingCode: booking.Code,
		PropertyID:  booking.PropertyID,
		RoomID:      booking.RoomID,
		Status:      booking.Status,
	})
	return result, nil
}

// insertWithRetry regenerates the booking code once if the first insert hits
// the unique index; the code is timestamp+random, not guaranteed unique.
func (s *BookingService) insertWithRetry(booking *models.Booking) error {
	conflicts, err := s.bookings.CreateIfAvailable(booking)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		booking.Code = domain.NewBookingCode()
		conflicts, err = s.bookings.CreateIfAvailable(booking)
	}
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Printf("[booking] room %d unavailable, %d conflict(s)", booking.RoomID, len(conflicts))
			return domain.ErrRoomUnavailable
		}
		return err
	}
	return nil
}

// Pay opens the next payment for a booking: a retry while UNPAID, or the
// remainder once the deposit settled. At most one payment may be in flight
// per booking.
func (s *BookingService) Pay(ctx context.Context, bookingID, renterID uint, depositOption string) (*BookingPayment, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if booking.RenterID != renterID {
		return nil, domain.ErrForbidden
	}
	inFlight, err := s.payments.HasInFlight(booking.ID)
	if err != nil {
		return nil, err
	}
	if inFlight {
		return nil, domain.ErrPaymentInFlight
	}

	room, err := s.rooms.GetByID(booking.RoomID)
	if err != nil {
		return nil, err
	}

	var amount float64
	var ptype string
	switch booking.Status {
	case domain.BookingUnpaid:
		amount = booking.TotalAmount
		ptype = domain.PaymentTypeFull
		if depositOption == DepositOptionDeposit {
			if booking.DepositAmount == nil {
				return nil, fmt.Errorf("%w: booking has no deposit amount", domain.ErrValidation)
			}
			amount = *booking.DepositAmount
			ptype = domain.PaymentTypeDeposit
		}
	case domain.BookingDepositPaid:
		if booking.DepositAmount == nil {
			return nil, fmt.Errorf("%w: booking has no deposit amount", domain.ErrValidation)
		}
		amount = booking.TotalAmount - *booking.DepositAmount
		if amount <= 0 {
			return nil, fmt.Errorf("%w: nothing left to pay", domain.ErrValidation)
		}
		ptype = domain.PaymentTypeFull
	default:
		return nil, domain.ErrInvalidTransition
	}

	done, err := s.payments.HasSuccessOfType(booking.ID, ptype)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, domain.Conflict("payment of this type already settled")
	}
	return s.issuePayment(ctx, booking, room, ptype, amount)
}

func (s *BookingService) issuePayment(ctx context.Context, booking *models.Booking, room *models.Room, ptype string, amount float64) (*BookingPayment, error) {
	renter, err := s.users.GetByID(booking.RenterID)
	if err != nil {
		return nil, err
	}
	prefix := "FULL"
	if ptype == domain.PaymentTypeDeposit {
		prefix = "DEP"
	}
	expiresAt := time.Now().Add(s.cfg.Gateway.PaymentExpiry)
	payment := &models.Payment{
		BookingID: booking.ID,
		RenterID:  booking.RenterID,
		OrderID:   fmt.Sprintf("%s-%s", prefix, uuid.New().String()),
		Type:      ptype,
		Amount:    amount,
		Status:    domain.PaymentPending,
		ExpiresAt: &expiresAt,
	}
	if err := s.payments.Create(payment); err != nil {
		return nil, err
	}

	tx, err := s.gateway.CreateTransaction(ctx, snap.Order{
		OrderID:       payment.OrderID,
		GrossAmount:   amount,
		ItemName:      fmt.Sprintf("Sewa kamar %s (%s)", room.Number, booking.Code),
		CustomerName:  renter.Name,
		CustomerEmail: renter.Email,
		CustomerPhone: renter.Phone,
		ExpiryMinutes: int(s.cfg.Gateway.PaymentExpiry.Minutes()),
	})
	if err != nil {
		payment.Status = domain.PaymentFailed
		if uerr := s.payments.Update(payment); uerr != nil {
			log.Printf("[booking] mark payment %s failed: %v", payment.OrderID, uerr)
		}
		return nil, fmt.Errorf("gateway: %w", err)
	}
	payment.SnapToken = tx.Token
	if err := s.payments.Update(payment); err != nil {
		return nil, err
	}
	return &BookingPayment{
		Booking:      booking,
		Payment:      payment,
		PaymentToken: tx.Token,
		RedirectURL:  tx.RedirectURL,
	}, nil
}

// Availability reports whether the room is free for [checkIn, checkOut) and
// which blocking bookings stand in the way.
func (s *BookingService) Availability(roomID uint, checkIn, checkOut time.Time, excludeBookingID uint) (bool, []models.Booking, error) {
	if !checkOut.After(checkIn) {
		return false, nil, fmt.Errorf("%w: check-out must be after check-in", domain.ErrValidation)
	}
	conflicts, err := s.bookings.FindConflicts(roomID, checkIn, checkOut, excludeBookingID, nil)
	if err != nil {
		return false, nil, err
	}
	return len(conflicts) == 0, conflicts, nil
}

type CheckInInput struct {
	BookingID uint
	Actor     *models.User
	// OpenEnded clears the check-out date: the tenant stays until checked
	// out, blocking the room indefinitely.
	OpenEnded bool
	// NewCheckOut overrides the derived check-out date; staff only.
	NewCheckOut *time.Time
}

// CheckIn moves a CONFIRMED booking to CHECKED_IN, recording the front-desk
// actor. Only staff scoped to the property may do this.
func (s *BookingService) CheckIn(in CheckInInput) (*models.Booking, error) {
	booking, err := s.getForStaff(in.BookingID, in.Actor)
	if err != nil {
		return nil, err
	}
	if !domain.ValidTransition(booking.Status, domain.BookingCheckedIn) {
		return nil, domain.ErrInvalidTransition
	}
	now := time.Now()
	booking.Status = domain.BookingCheckedIn
	booking.CheckedInBy = &in.Actor.ID
	booking.CheckedInAt = &now
	if in.OpenEnded {
		booking.CheckOutDate = nil
	} else if in.NewCheckOut != nil {
		if !in.NewCheckOut.After(booking.CheckInDate) {
			return nil, fmt.Errorf("%w: check-out must be after check-in", domain.ErrValidation)
		}
		booking.CheckOutDate = in.NewCheckOut
	}
	if err := s.bookings.Update(booking); err != nil {
		return nil, err
	}
	s.publishStatus(booking, "booking.checked_in")
	return booking, nil
}

// CheckOut completes a CHECKED_IN booking. An open-ended stay gets its
// check-out date stamped now.
func (s *BookingService) CheckOut(bookingID uint, actor *models.User) (*models.Booking, error) {
	booking, err := s.getForStaff(bookingID, actor)
	if err != nil {
		return nil, err
	}
	if !domain.ValidTransition(booking.Status, domain.BookingCompleted) {
		return nil, domain.ErrInvalidTransition
	}
	now := time.Now()
	booking.Status = domain.BookingCompleted
	booking.CheckedOutBy = &actor.ID
	booking.CheckedOutAt = &now
	if booking.CheckOutDate == nil {
		booking.CheckOutDate = &now
	}
	if err := s.bookings.Update(booking); err != nil {
		return nil, err
	}
	s.publishStatus(booking, "booking.checked_out")
	return booking, nil
}

// Cancel cancels a booking. Customers may cancel their own UNPAID bookings;
// staff may cancel any booking the transition table allows. An in-flight
// payment is failed together with the booking so a late webhook for it hits
// the idempotency gate.
func (s *BookingService) Cancel(bookingID uint, actor *models.User) (*models.Booking, error) {
	var booking *models.Booking
	var err error
	if actor.IsStaff() {
		booking, err = s.getForStaff(bookingID, actor)
	} else {
		booking, err = s.bookings.GetByID(bookingID)
		if err == nil && booking.RenterID != actor.ID {
			err = domain.ErrForbidden
		}
		if err == nil && booking.Status != domain.BookingUnpaid {
			err = domain.ErrForbidden
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !domain.ValidTransition(booking.Status, domain.BookingCancelled) {
		return nil, domain.ErrInvalidTransition
	}
	booking.Status = domain.BookingCancelled

	payments, err := s.payments.ListByBooking(booking.ID)
	if err != nil {
		return nil, err
	}
	var pending *models.Payment
	for i := range payments {
		if payments[i].Status == domain.PaymentPending {
			pending = &payments[i]
			break
		}
	}
	if pending != nil {
		pending.Status = domain.PaymentFailed
		if err := s.payments.UpdateWithBooking(pending, booking); err != nil {
			return nil, err
		}
	} else if err := s.bookings.Update(booking); err != nil {
		return nil, err
	}
	s.publishStatus(booking, "booking.cancelled")
	return booking, nil
}

func (s *BookingService) GetForActor(bookingID uint, actor *models.User) (*models.Booking, error) {
	if actor.IsStaff() {
		return s.getForStaff(bookingID, actor)
	}
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if booking.RenterID != actor.ID {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) ListForRenter(renterID uint) ([]models.Booking, error) {
	return s.bookings.ListByRenter(renterID)
}

func (s *BookingService) ListForProperty(propertyID uint, actor *models.User) ([]models.Booking, error) {
	if err := s.authorizeProperty(propertyID, actor); err != nil {
		return nil, err
	}
	return s.bookings.ListByProperty(propertyID)
}

// getForStaff loads the booking and checks the staff actor is scoped to its
// property: SUPERADMIN anywhere, ADMINKOS on owned properties, RECEPTIONIST
// on the property they work at.
func (s *BookingService) getForStaff(bookingID uint, actor *models.User) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := s.authorizeProperty(booking.PropertyID, actor); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) authorizeProperty(propertyID uint, actor *models.User) error {
	switch actor.Role {
	case domain.RoleSuperadmin:
		return nil
	case domain.RoleAdminKos:
		prop, err := s.properties.GetByID(propertyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if prop.OwnerID != actor.ID {
			return domain.ErrForbidden
		}
		return nil
	case domain.RoleReceptionist:
		if actor.PropertyID == nil || *actor.PropertyID != propertyID {
			return domain.ErrForbidden
		}
		return nil
	}
	return domain.ErrForbidden
}

func (s *BookingService) publishStatus(booking *models.Booking, eventType string) {
	s.events.Publish(BookingEvent{
		Type:          eventType,
		BookingID:     booking.ID,
		BookingCode:   booking.Code,
		PropertyID:    booking.PropertyID,
		RoomID:        booking.RoomID,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
	})
}
