package models

import (
	"time"

	"gorm.io/gorm"
)

// Room carries the price table and deposit configuration used by the pricing
// calculator. MonthlyPrice is the base rate; the other periods are optional
// overrides and fall back to values derived from the monthly price.
type Room struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PropertyID uint   `gorm:"not null;index" json:"property_id"`
	Number     string `gorm:"size:32;not null" json:"number"`
	SizeM2     int    `json:"size_m2"`

	MonthlyPrice   float64  `gorm:"type:decimal(14,2);not null" json:"monthly_price"`
	DailyPrice     *float64 `gorm:"type:decimal(14,2)" json:"daily_price,omitempty"`
	WeeklyPrice    *float64 `gorm:"type:decimal(14,2)" json:"weekly_price,omitempty"`
	QuarterlyPrice *float64 `gorm:"type:decimal(14,2)" json:"quarterly_price,omitempty"`
	YearlyPrice    *float64 `gorm:"type:decimal(14,2)" json:"yearly_price,omitempty"`

	DepositType  string  `gorm:"size:16;not null;default:'NONE'" json:"deposit_type"` // NONE | FIXED | PERCENTAGE
	DepositValue float64 `gorm:"type:decimal(14,2);default:0" json:"deposit_value"`

	Available bool           `gorm:"default:true;index" json:"available"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Property Property  `gorm:"foreignKey:PropertyID" json:"-"`
	Bookings []Booking `gorm:"foreignKey:RoomID" json:"-"`
}

func (Room) TableName() string {
	return "rooms"
}
