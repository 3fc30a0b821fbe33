package models

import (
	"time"

	"gorm.io/gorm"
)

// Property is a boarding house (kos) owned by an ADMINKOS user.
type Property struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"not null;index" json:"owner_id"`
	Name        string         `gorm:"size:128;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Address     string         `gorm:"size:255" json:"address"`
	City        string         `gorm:"size:64;index" json:"city"`
	Province    string         `gorm:"size:64" json:"province"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Owner User   `gorm:"foreignKey:OwnerID" json:"-"`
	Rooms []Room `gorm:"foreignKey:PropertyID" json:"rooms,omitempty"`
}

func (Property) TableName() string {
	return "properties"
}
