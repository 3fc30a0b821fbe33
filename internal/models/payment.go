package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is one attempt to pay a booking's deposit or full amount through
// the hosted checkout. OrderID is the gateway order id and doubles as the
// idempotency key for webhook reconciliation: a webhook for an OrderID whose
// payment already left PENDING is acknowledged without side effects.
type Payment struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	BookingID uint    `gorm:"not null;index" json:"booking_id"`
	RenterID  uint    `gorm:"not null;index" json:"renter_id"`
	OrderID   string  `gorm:"uniqueIndex;size:64;not null" json:"order_id"`
	Type      string  `gorm:"size:16;not null" json:"type"` // DEPOSIT | FULL
	Amount    float64 `gorm:"type:decimal(14,2);not null" json:"amount"`
	Status    string  `gorm:"size:16;not null;index" json:"status"` // PENDING, SUCCESS, FAILED, EXPIRED, REFUNDED

	GatewayTransactionID string `gorm:"size:64" json:"gateway_transaction_id"`
	Method               string `gorm:"size:32" json:"method"` // bank_transfer, qris, gopay, ...

	SnapToken string     `gorm:"size:128" json:"-"`
	ExpiresAt *time.Time `json:"expires_at"`
	PaidAt    *time.Time `json:"paid_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Booking Booking `gorm:"foreignKey:BookingID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
