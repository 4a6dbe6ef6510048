package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// ShipmentFilter is bound from the query string of GET /api/shipments.
// Dates are YYYY-MM-DD and compared inclusively against shipmentDate.
// Page and Size are both nil for the flat (non-paginated) contract.
type ShipmentFilter struct {
	StartDate string   `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string   `form:"endDate"   validate:"omitempty,datetime=2006-01-02"`
	ShopID    string   `form:"shopId"    validate:"omitempty,uuid"`
	DriverID  string   `form:"driverId"  validate:"omitempty,uuid"`
	Statuses  []string `form:"statuses"  validate:"omitempty,dive,oneof=BOZZA IN_CONSEGNA CONSEGNATA"`
	Page      *int     `form:"page"      validate:"omitempty,min=0"`
	Size      *int     `form:"size"      validate:"omitempty,min=1,max=200"`
}

// Paginated reports whether the client asked for the page envelope.
func (f ShipmentFilter) Paginated() bool { return f.Page != nil && f.Size != nil }

// ShipmentAggregates are totals computed on the FULL filtered result set,
// not just the current page, so the header widgets never show partial sums.
type ShipmentAggregates struct {
	TotalShipmentAmount decimal.Decimal `json:"totalShipmentAmount"`
	TotalShipmentItems  int             `json:"totalShipmentItems"`
	TotalReturnAmount   decimal.Decimal `json:"totalReturnAmount"`
	TotalReturnItems    int             `json:"totalReturnItems"`
	NetTotal            decimal.Decimal `json:"netTotal"`
}

// ShipmentPageResponse is the paginated envelope. The presence of the
// `content` field is what clients key on to distinguish it from the flat
// array contract.
type ShipmentPageResponse struct {
	Content       []ShipmentResponse `json:"content"`
	TotalElements int64              `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
	CurrentPage   int                `json:"currentPage"`
	PageSize      int                `json:"pageSize"`
	// PageWindow lists up to 5 page indexes centered on CurrentPage for
	// the pager widget; empty when a single page holds everything.
	PageWindow []int              `json:"pageWindow,omitempty"`
	Aggregates ShipmentAggregates `json:"aggregates"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ShipmentItemRequest struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"  validate:"required"`
	Notes     *string         `json:"notes"`
	// ReturnReason is only meaningful on the returns endpoint.
	ReturnReason *string `json:"returnReason" validate:"omitempty,oneof=DAMAGED EXPIRED WRONG_PRODUCT EXCESS_QUANTITY QUALITY_ISSUE OTHER"`
}

type CreateShipmentRequest struct {
	ShopID       string                `json:"shopId"       validate:"required,uuid"`
	DriverID     *string               `json:"driverId"     validate:"omitempty,uuid"`
	ShipmentDate string                `json:"shipmentDate" validate:"required,datetime=2006-01-02"`
	Notes        *string               `json:"notes"`
	Items        []ShipmentItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateShipmentRequest replaces the SHIPMENT lines (returns are kept)
// and patches header fields; every field is optional.
type UpdateShipmentRequest struct {
	ShopID       *string               `json:"shopId"       validate:"omitempty,uuid"`
	DriverID     *string               `json:"driverId"     validate:"omitempty,uuid"`
	ShipmentDate *string               `json:"shipmentDate" validate:"omitempty,datetime=2006-01-02"`
	Notes        *string               `json:"notes"`
	Items        []ShipmentItemRequest `json:"items" validate:"omitempty,dive"`
}

// AttachReturnsRequest posts a batch of RETURN lines plus the optional
// shipment-level return header in one call.
type AttachReturnsRequest struct {
	Items       []ShipmentItemRequest `json:"items" validate:"required,min=1,dive"`
	ReturnDate  *string               `json:"returnDate"  validate:"omitempty,datetime=2006-01-02"`
	ReturnNotes *string               `json:"returnNotes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ShipmentItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"productId"`
	ProductCode  string          `json:"productCode"`
	ProductName  string          `json:"productName"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	ItemType     string          `json:"itemType"`
	ReturnReason *string         `json:"returnReason,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
}

type ShipmentResponse struct {
	ID             string                 `json:"id"`
	ShipmentNumber string                 `json:"shipmentNumber"`
	ShipmentDate   string                 `json:"shipmentDate"`
	Status         string                 `json:"status"`
	Shop           *ShopResponse          `json:"shop,omitempty"`
	Driver         *UserResponse          `json:"driver,omitempty"`
	Notes          *string                `json:"notes,omitempty"`
	PDFPath        *string                `json:"pdfPath,omitempty"`
	ReturnDate     *string                `json:"returnDate,omitempty"`
	ReturnNotes    *string                `json:"returnNotes,omitempty"`
	EmailSent      bool                   `json:"emailSent"`
	WhatsappSent   bool                   `json:"whatsappSent"`
	Items          []ShipmentItemResponse `json:"items"`
	// Per-row totals so list views never recompute money client-side.
	Totals ShipmentTotals `json:"totals"`
	CreatedAt string      `json:"createdAt"`
}

// ShipmentTotals carries the three fixed-point figures for one shipment.
type ShipmentTotals struct {
	TotalShipmentValue string `json:"totalShipmentValue"`
	TotalReturnsValue  string `json:"totalReturnsValue"`
	NetValue           string `json:"netValue"`
}
