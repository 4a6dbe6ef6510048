package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole gates every operation in the API.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleAccountant UserRole = "ACCOUNTANT"
	RoleDriver     UserRole = "DRIVER"
	RoleShop       UserRole = "SHOP"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleAccountant || r == RoleDriver || r == RoleShop
}

// User stores system users. ShopID is required iff Role is SHOP — shop
// accounts only ever see their own shop's data.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username       string     `gorm:"uniqueIndex;not null"`
	FullName       string     `gorm:"not null"`
	Email          *string
	Phone          *string
	WhatsappNumber *string
	PasswordHash   string     `gorm:"not null"`
	Role           UserRole   `gorm:"type:varchar(20);not null"`
	ShopID         *uuid.UUID `gorm:"type:uuid;index"`
	Active         bool       `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Shop *Shop `gorm:"foreignKey:ShopID"`
}
