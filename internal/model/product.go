package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductCategory groups the bakery catalog.
type ProductCategory string

const (
	CategoryBread    ProductCategory = "BREAD"
	CategoryPastry   ProductCategory = "PASTRY"
	CategoryPizza    ProductCategory = "PIZZA"
	CategoryFocaccia ProductCategory = "FOCACCIA"
	CategoryCookie   ProductCategory = "COOKIE"
	CategoryCake     ProductCategory = "CAKE"
	CategoryOther    ProductCategory = "OTHER"
)

// Product is a catalog entry. UnitPrice is the current list price;
// shipment lines snapshot it so later price changes never rewrite
// historical documents.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code        string          `gorm:"uniqueIndex;not null"`
	Name        string          `gorm:"index;not null"`
	Description *string
	Category    ProductCategory `gorm:"type:varchar(20);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Unit        string          `gorm:"not null"` // "kg", "pz", "cassetta"
	Notes       *string
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
