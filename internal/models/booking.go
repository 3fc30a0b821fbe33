package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking is a renter's claim on a room for a date range. CheckOutDate is
// derived from CheckInDate + lease type at creation; it is nullable because
// front desk may clear it on check-in for an open-ended stay, and an
// open-ended blocking booking reserves the room indefinitely from its
// check-in.
type Booking struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Code       string `gorm:"uniqueIndex;size:32;not null" json:"code"`
	RenterID   uint   `gorm:"not null;index" json:"renter_id"`
	PropertyID uint   `gorm:"not null;index" json:"property_id"`
	RoomID     uint   `gorm:"not null;index" json:"room_id"`

	CheckInDate  time.Time  `gorm:"not null;index" json:"check_in_date"`
	CheckOutDate *time.Time `gorm:"index" json:"check_out_date"`
	LeaseType    string     `gorm:"size:16;not null" json:"lease_type"`

	TotalAmount   float64  `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	DepositAmount *float64 `gorm:"type:decimal(14,2)" json:"deposit_amount,omitempty"`

	PaymentStatus string `gorm:"size:16;not null;default:'PENDING';index" json:"payment_status"`
	Status        string `gorm:"size:16;not null;default:'UNPAID';index" json:"status"`

	CheckedInBy  *uint      `json:"checked_in_by,omitempty"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutBy *uint      `json:"checked_out_by,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Renter   User      `gorm:"foreignKey:RenterID" json:"-"`
	Room     Room      `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Payments []Payment `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}
