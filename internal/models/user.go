package models

import (
	"time"

	"kosku/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:128;not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone        string     `gorm:"size:32" json:"phone"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Role         string     `gorm:"size:20;not null;index" json:"role"` // SUPERADMIN | ADMINKOS | RECEPTIONIST | CUSTOMER
	GoogleID     *string    `gorm:"uniqueIndex;size:255" json:"-"`      // nil for email signups (avoids duplicate '' on unique index)
	// PropertyID scopes RECEPTIONIST accounts to the property they work at.
	PropertyID *uint          `gorm:"index" json:"property_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsCustomer() bool { return u.Role == domain.RoleCustomer }
func (u *User) IsStaff() bool    { return domain.IsStaffRole(u.Role) }
