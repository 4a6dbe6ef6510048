package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShipmentStatus is the delivery lifecycle of a shipment.
// Transitions are forward-only: BOZZA → IN_CONSEGNA → CONSEGNATA.
type ShipmentStatus string

const (
	StatusBozza      ShipmentStatus = "BOZZA"       // editable draft, not yet confirmed
	StatusInConsegna ShipmentStatus = "IN_CONSEGNA" // confirmed and out for delivery
	StatusConsegnata ShipmentStatus = "CONSEGNATA"  // delivered; returns may be attached
)

// NextStatus returns the only status a shipment may advance to,
// or "" when the status is terminal.
func (s ShipmentStatus) NextStatus() ShipmentStatus {
	switch s {
	case StatusBozza:
		return StatusInConsegna
	case StatusInConsegna:
		return StatusConsegnata
	default:
		return ""
	}
}

// Valid reports whether s is one of the three lifecycle states.
func (s ShipmentStatus) Valid() bool {
	return s == StatusBozza || s == StatusInConsegna || s == StatusConsegnata
}

// Shipment is a delivery document (DDT) from the depot to a shop.
// Items carries both SHIPMENT and RETURN line items; the net value of the
// document is the shipped total minus the returned total.
type Shipment struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShipmentNumber string         `gorm:"uniqueIndex;not null"`
	ShopID         uuid.UUID      `gorm:"type:uuid;index;not null"`
	DriverID       *uuid.UUID     `gorm:"type:uuid;index"`
	ShipmentDate   time.Time      `gorm:"type:date;index;not null"`
	Status         ShipmentStatus `gorm:"type:varchar(20);not null;default:'BOZZA'"`
	Notes          *string
	// PDFPath is set once the DDT has been generated (on confirm).
	PDFPath *string `gorm:"column:pdf_path"`
	// Return header fields — set when returns are reconciled on this shipment.
	ReturnDate  *time.Time `gorm:"type:date"`
	ReturnNotes *string
	// Notification bookkeeping.
	EmailSent      bool `gorm:"not null;default:false"`
	WhatsappSent   bool `gorm:"not null;default:false"`
	EmailSentAt    *time.Time
	WhatsappSentAt *time.Time
	CreatedByID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Shop      *Shop          `gorm:"foreignKey:ShopID"`
	Driver    *User          `gorm:"foreignKey:DriverID"`
	CreatedBy *User          `gorm:"foreignKey:CreatedByID"`
	Items     []ShipmentItem `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns the server-side shipment number.
func (s *Shipment) BeforeCreate(_ *gorm.DB) error {
	if s.ShipmentNumber == "" {
		s.ShipmentNumber = newDocumentNumber("SHP")
	}
	return nil
}

// newDocumentNumber builds a "PFX-YYYYMMDD-NNNNN" identifier.
// The millisecond suffix keeps numbers unique enough within one day;
// the DB unique index is the real guarantee.
func newDocumentNumber(prefix string) string {
	now := time.Now()
	return fmt.Sprintf("%s-%s-%05d", prefix, now.Format("20060102"), now.UnixMilli()%100000)
}
