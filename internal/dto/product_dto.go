package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Code        string          `json:"code"      validate:"required,min=1,max=20"`
	Name        string          `json:"name"      validate:"required,min=2,max=100"`
	Description *string         `json:"description"`
	Category    string          `json:"category"  validate:"required,oneof=BREAD PASTRY PIZZA FOCACCIA COOKIE CAKE OTHER"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"required,gt=0"`
	Unit        string          `json:"unit"      validate:"required"`
	Notes       *string         `json:"notes"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"      validate:"omitempty,min=2,max=100"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"  validate:"omitempty,oneof=BREAD PASTRY PIZZA FOCACCIA COOKIE CAKE OTHER"`
	UnitPrice   *decimal.Decimal `json:"unitPrice" validate:"omitempty,gt=0"`
	Unit        *string          `json:"unit"`
	Notes       *string          `json:"notes"`
	Active      *bool            `json:"active"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    string          `json:"category"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Unit        string          `json:"unit"`
	Notes       *string         `json:"notes,omitempty"`
	Active      bool            `json:"active"`
}
