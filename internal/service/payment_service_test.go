package service

import (
	"testing"
	"time"

	"kosku/config"
	"kosku/internal/domain"
	"kosku/internal/models"
	"kosku/pkg/snap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testServerKey = "test-server-key"

func testConfig() *config.Config {
	return &config.Config{
		Gateway: config.GatewayConfig{
			ServerKey:     testServerKey,
			PaymentExpiry: time.Hour,
		},
	}
}

func signedNotification(orderID, txStatus string) *Notification {
	n := &Notification{
		OrderID:           orderID,
		StatusCode:        "200",
		GrossAmount:       "500000.00",
		PaymentType:       "bank_transfer",
		TransactionStatus: txStatus,
		TransactionID:     "gw-tx-1",
	}
	n.SignatureKey = snap.Signature(n.OrderID, n.StatusCode, n.GrossAmount, testServerKey)
	return n
}

func TestMapGatewayStatus(t *testing.T) {
	cases := []struct {
		tx, fraud, want string
	}{
		{"capture", "accept", domain.PaymentSuccess},
		{"capture", "challenge", domain.PaymentPending},
		{"capture", "", domain.PaymentPending},
		{"settlement", "", domain.PaymentSuccess},
		{"pending", "", domain.PaymentPending},
		{"deny", "", domain.PaymentFailed},
		{"cancel", "", domain.PaymentFailed},
		{"expire", "", domain.PaymentExpired},
		{"refund", "", domain.PaymentRefunded},
		{"partial_refund", "", domain.PaymentRefunded},
		{"something_new", "", domain.PaymentPending},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MapGatewayStatus(tc.tx, tc.fraud), "%s/%s", tc.tx, tc.fraud)
	}
}

func newPaymentService(payments *MockPaymentStore, bookings *MockBookingStore, ledger *MockLedgerStore) (*PaymentService, *recordingBroadcaster) {
	rec := &recordingBroadcaster{}
	svc := NewPaymentService(testConfig(), payments, bookings, ledger, NewEventService(rec))
	return svc, rec
}

func TestReconcile_SettlementConfirmsDepositBooking(t *testing.T) {
	payments := new(MockPaymentStore)
	bookings := new(MockBookingStore)
	ledger := new(MockLedgerStore)
	svc, rec := newPaymentService(payments, bookings, ledger)

	payment := &models.Payment{ID: 10, BookingID: 5, OrderID: "DEP-1", Type: domain.PaymentTypeDeposit, Amount: 500000, Status: domain.PaymentPending}
	booking := &models.Booking{ID: 5, Code: "KOS-X", PropertyID: 2, RoomID: 7, Status: domain.BookingUnpaid, PaymentStatus: domain.PaymentPending}

	payments.On("GetByOrderID", "DEP-1").Return(payment, nil)
	bookings.On("GetByID", uint(5)).Return(booking, nil)
	payments.On("UpdateWithBooking", payment, booking).Return(nil)
	ledger.On("Create", mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Entry == "CREDIT" && e.OrderID == "DEP-1" && e.Amount == 500000
	})).Return(nil)

	p, b, err := svc.Reconcile(signedNotification("DEP-1", "settlement"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, p.Status)
	assert.Equal(t, "gw-tx-1", p.GatewayTransactionID)
	assert.NotNil(t, p.PaidAt)
	assert.Equal(t, domain.BookingDepositPaid, b.Status)
	assert.Equal(t, domain.PaymentSuccess, b.PaymentStatus)

	require.Len(t, rec.events, 1)
	assert.Equal(t, "payment.reconciled", rec.events[0].Type)
	payments.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestReconcile_FullPaymentConfirmsBooking(t *testing.T) {
	payments := new(MockPaymentStore)
	bookings := new(MockBookingStore)
	ledger := new(MockLedgerStore)
	svc, _ := newPaymentService(payments, bookings, ledger)

	payment := &models.Payment{ID: 11, BookingID: 5, OrderID: "FULL-1", Type: domain.PaymentTypeFull, Amount: 1500000, Status: domain.PaymentPending}
	booking := &models.Booking{ID: 5, Status: domain.BookingDepositPaid, PaymentStatus: domain.PaymentSuccess}

	payments.On("GetByOrderID", "FULL-1").Return(payment, nil)
	bookings.On("GetByID", uint(5)).Return(booking, nil)
	payments.On("UpdateWithBooking", payment, booking).Return(nil)
	ledger.On("Create", mock.Anything).Return(nil)

	_, b, err := svc.Reconcile(signedNotification("FULL-1", "settlement"))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
}

func TestReconcile_Idempotent(t *testing.T) {
	payments := new(MockPaymentStore)
	bookings := new(MockBookingStore)
	ledger := new(MockLedgerStore)
	svc, rec := newPaymentService(payments, bookings, ledger)

	payment := &models.Payment{ID: 10, BookingID: 5, OrderID: "DEP-1", Type: domain.PaymentTypeDeposit, Status: domain.PaymentSuccess}
	booking := &models.Booking{ID: 5, Status: domain.BookingDepositPaid, PaymentStatus: domain.PaymentSuccess}

	payments.On("GetByOrderID", "DEP-1").Return(payment, nil)
	bookings.On("GetByID", uint(5)).Return(booking, nil)

	// identical webhook re-delivered: same state back, no writes, no events
	p, b, err := svc.Reconcile(signedNotification("DEP-1", "settlement"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, p.Status)
	assert.Equal(t, domain.BookingDepositPaid, b.Status)
	assert.Empty(t, rec.events)
	payments.AssertNotCalled(t, "UpdateWithBooking", mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "Create", mock.Anything)
}

func TestReconcile_RejectsBadSignatureBeforeLookup(t *testing.T) {
	payments := new(MockPaymentStore)
	bookings := new(MockBookingStore)
	svc, _ := newPaymentService(payments, bookings, new(MockLedgerStore))

	n := signedNotification("DEP-1", "settlement")
	n.SignatureKey = "forged"

	_, _, err := svc.Reconcile(n)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	payments.AssertNotCalled(t, "GetByOrderID", mock.Anything)
}

func TestReconcile_RejectsMalformedPayload(t *testing.T) {
	svc, _ := newPaymentService(new(MockPaymentStore), new(MockBookingStore), new(MockLedgerStore))

	n := signedNotification("DEP-1", "settlement")
	n.GrossAmount = ""
	_, _, err := svc.Reconcile(n)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReconcile_UnknownOrder(t *testing.T) {
	payments := new(MockPaymentStore)
	svc, _ := newPaymentService(payments, new(MockBookingStore), new(MockLedgerStore))

	payments.On("GetByOrderID", "DEP-404").Return(nil, gorm.ErrRecordNotFound)
	_, _, err := svc.Reconcile(signedNotification("DEP-404", "settlement"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcile_DenyKeepsBookingUnpaid(t *testing.T) {
	payments := new(MockPaymentStore)
	bookings := new(MockBookingStore)
	svc, _ := newPaymentService(payments, bookings, new(MockLedgerStore))

	payment := &models.Payment{ID: 10, BookingID: 5, OrderID: "DEP-1", Type: domain.PaymentTypeDeposit, Status: domain.PaymentPending}
	booking := &models.Booking{ID: 5, Status: domain.BookingUnpaid, PaymentStatus: domain.PaymentPending}

	payments.On("GetByOrderID", "DEP-1").Return(payment, nil)
	bookings.On("GetByID", uint(5)).Return(booking, nil)
	payments.On("UpdateWithBooking", payment, booking).Return(nil)

	p, b, err := svc.Reconcile(signedNotification("DEP-1", "deny"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, p.Status)
	assert.Equal(t, domain.BookingUnpaid, b.Status)
	assert.Equal(t, domain.PaymentFailed, b.PaymentStatus)
}

func TestReconcile_ExpireOnlyRegressesUnpaidBooking(t *testing.T) {
	t.Run("unpaid booking expires", func(t *testing.T) {
		payments := new(MockPaymentStore)
		bookings := new(MockBookingStore)
		svc, _ := newPaymentService(payments, bookings, new(MockLedgerStore))

		payment := &models.Payment{ID: 10, BookingID: 5, OrderID: "DEP-1", Type: domain.PaymentTypeDeposit, Status: domain.PaymentPending}
		booking := &models.Booking{ID: 5, Status: domain.BookingUnpaid}

		payments.On("GetByOrderID", "DEP-1").Return(payment, nil)
		bookings.On("GetByID", uint(5)).Return(booking, nil)
		payments.On("UpdateWithBooking", payment, booking).Return(nil)

		_, b, err := svc.Reconcile(signedNotification("DEP-1", "expire"))
		require.NoError(t, err)
		assert.Equal(t, domain.BookingExpired, b.Status)
	})

	t.Run("advanced booking is untouched by stale expiry", func(t *testing.T) {
		payments := new(MockPaymentStore)
		bookings := new(MockBookingStore)
		svc, _ := newPaymentService(payments, bookings, new(MockLedgerStore))

		// an old DEPOSIT attempt expires after the booking was confirmed
		// through a later FULL payment
		payment := &models.Payment{ID: 10, BookingID: 5, OrderID: "DEP-1", Type: domain.PaymentTypeDeposit, Status: domain.PaymentPending}
		booking := &models.Booking{ID: 5, Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentSuccess}

		payments.On("GetByOrderID", "DEP-1").Return(payment, nil)
		bookings.On("GetByID", uint(5)).Return(booking, nil)
		payments.On("UpdateWithBooking", payment, (*models.Booking)(nil)).Return(nil)

		p, b, err := svc.Reconcile(signedNotification("DEP-1", "expire"))
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentExpired, p.Status)
		assert.Equal(t, domain.BookingConfirmed, b.Status)
		assert.Equal(t, domain.PaymentSuccess, b.PaymentStatus)
	})
}

func TestReconcile_StaleSuccessOnCancelledBooking(t *testing.T) {
	payments := new(MockPaymentStore)
	bookings := new(MockBookingStore)
	ledger := new(MockLedgerStore)
	svc, _ := newPaymentService(payments, bookings, ledger)

	payment := &models.Payment{ID: 10, BookingID: 5, OrderID: "DEP-1", Type: domain.PaymentTypeDeposit, Status: domain.PaymentPending}
	booking := &models.Booking{ID: 5, Status: domain.BookingCancelled}

	payments.On("GetByOrderID", "DEP-1").Return(payment, nil)
	bookings.On("GetByID", uint(5)).Return(booking, nil)
	// CANCELLED -> DEPOSIT_PAID is not whitelisted; payment settles alone
	payments.On("UpdateWithBooking", payment, (*models.Booking)(nil)).Return(nil)
	ledger.On("Create", mock.Anything).Return(nil)

	p, b, err := svc.Reconcile(signedNotification("DEP-1", "settlement"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, p.Status)
	assert.Equal(t, domain.BookingCancelled, b.Status)
}

func TestReconcile_PendingNotificationIsNoop(t *testing.T) {
	payments := new(MockPaymentStore)
	bookings := new(MockBookingStore)
	svc, _ := newPaymentService(payments, bookings, new(MockLedgerStore))

	payment := &models.Payment{ID: 10, BookingID: 5, OrderID: "DEP-1", Status: domain.PaymentPending}
	booking := &models.Booking{ID: 5, Status: domain.BookingUnpaid}

	payments.On("GetByOrderID", "DEP-1").Return(payment, nil)
	bookings.On("GetByID", uint(5)).Return(booking, nil)

	p, _, err := svc.Reconcile(signedNotification("DEP-1", "pending"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, p.Status)
	payments.AssertNotCalled(t, "UpdateWithBooking", mock.Anything, mock.Anything)
}

func TestReconcile_LedgerFailureDoesNotFailReconciliation(t *testing.T) {
	payments := new(MockPaymentStore)
	bookings := new(MockBookingStore)
	ledger := new(MockLedgerStore)
	svc, _ := newPaymentService(payments, bookings, ledger)

	payment := &models.Payment{ID: 10, BookingID: 5, OrderID: "DEP-1", Type: domain.PaymentTypeDeposit, Status: domain.PaymentPending}
	booking := &models.Booking{ID: 5, Status: domain.BookingUnpaid}

	payments.On("GetByOrderID", "DEP-1").Return(payment, nil)
	bookings.On("GetByID", uint(5)).Return(booking, nil)
	payments.On("UpdateWithBooking", payment, booking).Return(nil)
	ledger.On("Create", mock.Anything).Return(assert.AnError)

	_, _, err := svc.Reconcile(signedNotification("DEP-1", "settlement"))
	assert.NoError(t, err)
}

func TestReconcile_StorageFailureSurfaces(t *testing.T) {
	payments := new(MockPaymentStore)
	bookings := new(MockBookingStore)
	svc, _ := newPaymentService(payments, bookings, new(MockLedgerStore))

	payment := &models.Payment{ID: 10, BookingID: 5, OrderID: "DEP-1", Type: domain.PaymentTypeDeposit, Status: domain.PaymentPending}
	booking := &models.Booking{ID: 5, Status: domain.BookingUnpaid}

	payments.On("GetByOrderID", "DEP-1").Return(payment, nil)
	bookings.On("GetByID", uint(5)).Return(booking, nil)
	payments.On("UpdateWithBooking", payment, booking).Return(assert.AnError)

	_, _, err := svc.Reconcile(signedNotification("DEP-1", "settlement"))
	assert.Error(t, err)
}

func TestExpireOverdue(t *testing.T) {
	payments := new(MockPaymentStore)
	bookings := new(MockBookingStore)
	svc, rec := newPaymentService(payments, bookings, new(MockLedgerStore))

	now := time.Now()
	overdue := []models.Payment{
		{ID: 1, BookingID: 5, OrderID: "DEP-1", Status: domain.PaymentPending},
		{ID: 2, BookingID: 6, OrderID: "FULL-2", Status: domain.PaymentPending},
	}
	unpaid := &models.Booking{ID: 5, Status: domain.BookingUnpaid}
	confirmed := &models.Booking{ID: 6, Status: domain.BookingConfirmed}

	payments.On("FindExpiredPending", now).Return(overdue, nil)
	bookings.On("GetByID", uint(5)).Return(unpaid, nil)
	bookings.On("GetByID", uint(6)).Return(confirmed, nil)
	payments.On("UpdateWithBooking", mock.MatchedBy(func(p *models.Payment) bool {
		return p.OrderID == "DEP-1" && p.Status == domain.PaymentExpired
	}), unpaid).Return(nil)
	payments.On("UpdateWithBooking", mock.MatchedBy(func(p *models.Payment) bool {
		return p.OrderID == "FULL-2" && p.Status == domain.PaymentExpired
	}), (*models.Booking)(nil)).Return(nil)

	n, err := svc.ExpireOverdue(now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, domain.BookingExpired, unpaid.Status)
	assert.Equal(t, domain.BookingConfirmed, confirmed.Status)
	assert.Len(t, rec.events, 2)
}
