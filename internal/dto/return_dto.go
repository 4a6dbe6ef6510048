package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ReturnItemRequest struct {
	ShipmentItemID *string         `json:"shipmentItemId" validate:"omitempty,uuid"`
	ProductID      string          `json:"productId"      validate:"required,uuid"`
	Quantity       decimal.Decimal `json:"quantity"       validate:"required"`
	Reason         *string         `json:"reason"         validate:"omitempty,oneof=DAMAGED EXPIRED WRONG_PRODUCT EXCESS_QUANTITY QUALITY_ISSUE OTHER"`
	Notes          *string         `json:"notes"`
}

type CreateReturnRequest struct {
	ShipmentID string              `json:"shipmentId" validate:"required,uuid"`
	ReturnDate string              `json:"returnDate" validate:"required,datetime=2006-01-02"`
	Reason     *string             `json:"reason"     validate:"omitempty,max=1000"`
	Notes      *string             `json:"notes"`
	Items      []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateReturnRequest edits the header of a pending return. Items are
// immutable after creation; a wrong batch is deleted and re-entered.
type UpdateReturnRequest struct {
	ReturnDate *string `json:"returnDate" validate:"omitempty,datetime=2006-01-02"`
	Reason     *string `json:"reason"     validate:"omitempty,max=1000"`
	Notes      *string `json:"notes"`
}

type UpdateReturnStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED PROCESSED CANCELLED"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReturnItemResponse struct {
	ID             string          `json:"id"`
	ShipmentItemID *string         `json:"shipmentItemId,omitempty"`
	ProductID      string          `json:"productId"`
	ProductCode    string          `json:"productCode"`
	ProductName    string          `json:"productName"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Reason         *string         `json:"reason,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
}

type ReturnResponse struct {
	ID            string               `json:"id"`
	ReturnNumber  string               `json:"returnNumber"`
	ShipmentID    string               `json:"shipmentId"`
	ShopID        string               `json:"shopId"`
	ShopName      string               `json:"shopName"`
	ReturnDate    string               `json:"returnDate"`
	Status        string               `json:"status"`
	Reason        *string              `json:"reason,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
	ProcessedByID *string              `json:"processedById,omitempty"`
	ProcessedAt   *string              `json:"processedAt,omitempty"`
	TotalAmount   decimal.Decimal      `json:"totalAmount"`
	Items         []ReturnItemResponse `json:"items"`
	CreatedAt     string               `json:"createdAt"`
}
