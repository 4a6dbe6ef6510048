package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemType discriminates shipped goods from returned goods within one
// shipment's item list.
type ItemType string

const (
	ItemShipment ItemType = "SHIPMENT"
	ItemReturn   ItemType = "RETURN"
)

// ReturnReason classifies why a RETURN item came back.
type ReturnReason string

const (
	ReasonDamaged        ReturnReason = "DAMAGED"
	ReasonExpired        ReturnReason = "EXPIRED"
	ReasonWrongProduct   ReturnReason = "WRONG_PRODUCT"
	ReasonExcessQuantity ReturnReason = "EXCESS_QUANTITY"
	ReasonQualityIssue   ReturnReason = "QUALITY_ISSUE"
	ReasonOther          ReturnReason = "OTHER"
)

// Valid reports whether r is a known reason code.
func (r ReturnReason) Valid() bool {
	switch r {
	case ReasonDamaged, ReasonExpired, ReasonWrongProduct,
		ReasonExcessQuantity, ReasonQualityIssue, ReasonOther:
		return true
	}
	return false
}

// ShipmentItem is one priced line of a shipment. UnitPrice is a snapshot
// of the product price at creation time; TotalPrice is always
// quantity × unitPrice and is recomputed on every write. Return item
// totals are positive magnitudes — they are subtracted, never stored
// negative.
type ShipmentItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ShipmentID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ItemType     ItemType        `gorm:"type:varchar(10);not null;default:'SHIPMENT'"`
	ReturnReason *ReturnReason   `gorm:"type:varchar(20)"`
	Notes        *string

	Product *Product `gorm:"foreignKey:ProductID"`
}

// BeforeSave keeps the totalPrice invariant on both insert and update.
func (i *ShipmentItem) BeforeSave(_ *gorm.DB) error {
	i.TotalPrice = i.Quantity.Mul(i.UnitPrice)
	return nil
}
