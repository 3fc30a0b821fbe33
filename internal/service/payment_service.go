package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"kosku/config"
	"kosku/internal/domain"
	"kosku/internal/models"
	"kosku/pkg/snap"

	"gorm.io/gorm"
)

// Notification is the gateway's webhook payload. GrossAmount stays a string:
// the signature covers the exact bytes the gateway sent.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	SignatureKey      string `json:"signature_key"`
	SettlementTime    string `json:"settlement_time,omitempty"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	ExpiryTime        string `json:"expiry_time,omitempty"`
}

type PaymentService struct {
	cfg      *config.Config
	payments PaymentStore
	bookings BookingStore
	ledger   LedgerStore
	events   *EventService
}

func NewPaymentService(cfg *config.Config, payments PaymentStore, bookings BookingStore, ledger LedgerStore, events *EventService) *PaymentService {
	return &PaymentService{cfg: cfg, payments: payments, bookings: bookings, ledger: ledger, events: events}
}

// MapGatewayStatus translates the gateway's transaction status (plus fraud
// status for card captures) to an internal payment status. Unknown statuses
// stay PENDING so a later, recognized notification can still settle.
func MapGatewayStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return domain.PaymentSuccess
		}
		return domain.PaymentPending
	case "settlement":
		return domain.PaymentSuccess
	case "pending":
		return domain.PaymentPending
	case "deny", "cancel":
		return domain.PaymentFailed
	case "expire":
		return domain.PaymentExpired
	case "refund", "partial_refund":
		return domain.PaymentRefunded
	default:
		return domain.PaymentPending
	}
}

// Reconcile turns a gateway notification into a consistent (Payment, Booking)
// update, exactly once per meaningful status change:
//
//  1. payload shape and signature are checked before any lookup or mutation;
//  2. a payment already out of PENDING is returned unchanged (duplicate
//     delivery);
//  3. the mapped payment status derives the booking status, guarded by the
//     transition table, and both rows commit in one transaction;
//  4. ledger write and staff event are best-effort afterwards.
//
// A storage failure is returned as-is; the handler answers non-2xx so the
// gateway retries.
func (s *PaymentService) Reconcile(n *Notification) (*models.Payment, *models.Booking, error) {
	if n.OrderID == "" || n.StatusCode == "" || n.GrossAmount == "" || n.TransactionStatus == "" || n.SignatureKey == "" {
		return nil, nil, fmt.Errorf("%w: missing notification fields", domain.ErrValidation)
	}
	if !snap.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, s.cfg.Gateway.ServerKey, n.SignatureKey) {
		return nil, nil, domain.ErrInvalidSignature
	}

	payment, err := s.payments.GetByOrderID(n.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: payment for order %s", domain.ErrNotFound, n.OrderID)
		}
		return nil, nil, err
	}
	booking, err := s.bookings.GetByID(payment.BookingID)
	if err != nil {
		return nil, nil, err
	}

	// Idempotency gate: the order id is the idempotency key. Re-delivered
	// webhooks for a settled payment are acknowledged without side effects.
	if domain.IsTerminalPaymentStatus(payment.Status) {
		log.Printf("[reconcile] order %s already %s, no-op", n.OrderID, payment.Status)
		return payment, booking, nil
	}

	newStatus := MapGatewayStatus(n.TransactionStatus, n.FraudStatus)
	if newStatus == domain.PaymentPending {
		// Nothing meaningful changed; keep waiting.
		return payment, booking, nil
	}

	payment.Status = newStatus
	payment.GatewayTransactionID = n.TransactionID
	payment.Method = n.PaymentType
	if newStatus == domain.PaymentSuccess {
		now := time.Now()
		payment.PaidAt = &now
	}

	updated := s.deriveBookingStatus(payment, booking, newStatus)
	if !updated {
		booking = nil
	}
	if err := s.payments.UpdateWithBooking(payment, booking); err != nil {
		return nil, nil, err
	}
	if booking == nil {
		booking, err = s.bookings.GetByID(payment.BookingID)
		if err != nil {
			return nil, nil, err
		}
	}

	s.recordSideEffects(payment, booking, newStatus)
	return payment, booking, nil
}

// deriveBookingStatus applies the payment outcome to the booking and reports
// whether the booking row needs writing. SUCCESS advances the booking per
// payment type; EXPIRED only expires a booking that never left UNPAID, so a
// stale expiry for an old attempt cannot regress an advanced booking. A
// derived transition the table rejects is skipped with a log line; the
// payment still settles.
func (s *PaymentService) deriveBookingStatus(payment *models.Payment, booking *models.Booking, newStatus string) bool {
	var next string
	switch newStatus {
	case domain.PaymentSuccess:
		if payment.Type == domain.PaymentTypeDeposit {
			next = domain.BookingDepositPaid
		} else {
			next = domain.BookingConfirmed
		}
	case domain.PaymentFailed:
		// Booking stays UNPAID; only the payment-status mirror moves.
		if booking.Status == domain.BookingUnpaid {
			booking.PaymentStatus = newStatus
			return true
		}
		return false
	case domain.PaymentExpired:
		if booking.Status != domain.BookingUnpaid {
			log.Printf("[reconcile] order %s expired but booking %s is %s, leaving booking untouched",
				payment.OrderID, booking.Code, booking.Status)
			return false
		}
		next = domain.BookingExpired
	case domain.PaymentRefunded:
		booking.PaymentStatus = newStatus
		return true
	default:
		return false
	}

	if !domain.ValidTransition(booking.Status, next) {
		log.Printf("[reconcile] order %s: skipping booking transition %s -> %s for %s",
			payment.OrderID, booking.Status, next, booking.Code)
		return false
	}
	booking.Status = next
	booking.PaymentStatus = newStatus
	return true
}

// recordSideEffects writes the ledger entry and pushes the staff event.
// Best-effort: a failure here is logged and never unwinds the reconciliation.
func (s *PaymentService) recordSideEffects(payment *models.Payment, booking *models.Booking, newStatus string) {
	entry := ""
	switch newStatus {
	case domain.PaymentSuccess:
		entry = "CREDIT"
	case domain.PaymentRefunded:
		entry = "DEBIT"
	}
	if entry != "" {
		err := s.ledger.Create(&models.LedgerEntry{
			PaymentID:  payment.ID,
			BookingID:  booking.ID,
			PropertyID: booking.PropertyID,
			OrderID:    payment.OrderID,
			Entry:      entry,
			Amount:     payment.Amount,
			Note:       fmt.Sprintf("%s %s", payment.Type, booking.Code),
		})
		if err != nil {
			log.Printf("[reconcile] ledger write failed for order %s: %v", payment.OrderID, err)
		}
	}
	s.events.Publish(BookingEvent{
		Type:          "payment.reconciled",
		BookingID:     booking.ID,
		BookingCode:   booking.Code,
		PropertyID:    booking.PropertyID,
		RoomID:        booking.RoomID,
		Status:        booking.Status,
		PaymentStatus: payment.Status,
		OrderID:       payment.OrderID,
	})
}

// ExpireOverdue sweeps PENDING payments whose expiry passed: the payment goes
// EXPIRED and a booking that never left UNPAID goes with it. Returns how many
// payments were expired.
func (s *PaymentService) ExpireOverdue(now time.Time) (int, error) {
	payments, err := s.payments.FindExpiredPending(now)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range payments {
		p := &payments[i]
		booking, err := s.bookings.GetByID(p.BookingID)
		if err != nil {
			log.Printf("[sweep] booking %d for order %s: %v", p.BookingID, p.OrderID, err)
			continue
		}
		p.Status = domain.PaymentExpired
		var pair *models.Booking
		if booking.Status == domain.BookingUnpaid && domain.ValidTransition(booking.Status, domain.BookingExpired) {
			booking.Status = domain.BookingExpired
			booking.PaymentStatus = domain.PaymentExpired
			pair = booking
		}
		if err := s.payments.UpdateWithBooking(p, pair); err != nil {
			log.Printf("[sweep] expire order %s: %v", p.OrderID, err)
			continue
		}
		expired++
		s.events.Publish(BookingEvent{
			Type:          "payment.expired",
			BookingID:     booking.ID,
			BookingCode:   booking.Code,
			PropertyID:    booking.PropertyID,
			RoomID:        booking.RoomID,
			Status:        booking.Status,
			PaymentStatus: p.Status,
			OrderID:       p.OrderID,
		})
	}
	return expired, nil
}
