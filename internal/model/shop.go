package model

import (
	"time"

	"github.com/google/uuid"
)

// Shop is a point of sale supplied from the depot. Deactivation is the
// normal removal flow; hard delete is reserved to explicit admin action.
type Shop struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code           string    `gorm:"uniqueIndex;not null"`
	Name           string    `gorm:"index;not null"`
	Address        string    `gorm:"not null"`
	City           string    `gorm:"not null"`
	Province       *string
	ZipCode        *string
	Phone          *string
	Email          *string
	WhatsappNumber *string
	ContactPerson  *string
	Notes          *string
	Active         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
