package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReturnStatus is the processing workflow of a standalone return document.
type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "PENDING"
	ReturnApproved  ReturnStatus = "APPROVED"
	ReturnRejected  ReturnStatus = "REJECTED"
	ReturnProcessed ReturnStatus = "PROCESSED"
	ReturnCancelled ReturnStatus = "CANCELLED"
)

// Valid reports whether s is a known return status.
func (s ReturnStatus) Valid() bool {
	switch s {
	case ReturnPending, ReturnApproved, ReturnRejected, ReturnProcessed, ReturnCancelled:
		return true
	}
	return false
}

// Return is a reconciliation document grouping returned goods against a
// delivered shipment. The authoritative value data lives on the shipment
// as RETURN-type items; this document tracks the approval workflow.
type Return struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReturnNumber  string       `gorm:"uniqueIndex;not null"`
	ShipmentID    uuid.UUID    `gorm:"type:uuid;index;not null"`
	ShopID        uuid.UUID    `gorm:"type:uuid;index;not null"`
	ReturnDate    time.Time    `gorm:"type:date;not null"`
	Status        ReturnStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Reason        *string      `gorm:"type:varchar(1000)"`
	Notes         *string
	ProcessedByID *uuid.UUID `gorm:"type:uuid"`
	ProcessedAt   *time.Time
	CreatedByID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Shipment    *Shipment    `gorm:"foreignKey:ShipmentID"`
	Shop        *Shop        `gorm:"foreignKey:ShopID"`
	ProcessedBy *User        `gorm:"foreignKey:ProcessedByID"`
	CreatedBy   *User        `gorm:"foreignKey:CreatedByID"`
	Items       []ReturnItem `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns the server-side return number.
func (r *Return) BeforeCreate(_ *gorm.DB) error {
	if r.ReturnNumber == "" {
		r.ReturnNumber = newDocumentNumber("RET")
	}
	return nil
}

// ReturnItem is one returned product line of a Return document.
type ReturnItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReturnID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	ShipmentItemID *uuid.UUID      `gorm:"type:uuid"`
	ProductID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Reason         *ReturnReason   `gorm:"type:varchar(20)"`
	Notes          *string

	Product *Product `gorm:"foreignKey:ProductID"`
}

// BeforeSave keeps the totalAmount invariant on both insert and update.
func (i *ReturnItem) BeforeSave(_ *gorm.DB) error {
	i.TotalAmount = i.Quantity.Mul(i.UnitPrice)
	return nil
}
