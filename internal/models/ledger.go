package models

import "time"

// LedgerEntry is the append-only record of reconciled money movement, written
// best-effort after a webhook settles a payment. A missed entry is logged and
// never fails the reconciliation; the payments table remains authoritative.
type LedgerEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PaymentID  uint      `gorm:"not null;index" json:"payment_id"`
	BookingID  uint      `gorm:"not null;index" json:"booking_id"`
	PropertyID uint      `gorm:"not null;index" json:"property_id"`
	OrderID    string    `gorm:"size:64;not null;index" json:"order_id"`
	Entry      string    `gorm:"size:16;not null" json:"entry"` // CREDIT | DEBIT
	Amount     float64   `gorm:"type:decimal(14,2);not null" json:"amount"`
	Note       string    `gorm:"size:255" json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
