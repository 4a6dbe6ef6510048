package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateShopRequest struct {
	Code           string  `json:"code"    validate:"required,min=1,max=20"`
	Name           string  `json:"name"    validate:"required,min=2,max=100"`
	Address        string  `json:"address" validate:"required"`
	City           string  `json:"city"    validate:"required"`
	Province       *string `json:"province"       validate:"omitempty,len=2"`
	ZipCode        *string `json:"zipCode"        validate:"omitempty,len=5"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"          validate:"omitempty,email"`
	WhatsappNumber *string `json:"whatsappNumber" validate:"omitempty,e164"`
	ContactPerson  *string `json:"contactPerson"`
	Notes          *string `json:"notes"`
}

type UpdateShopRequest struct {
	Name           *string `json:"name"    validate:"omitempty,min=2,max=100"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	Province       *string `json:"province"       validate:"omitempty,len=2"`
	ZipCode        *string `json:"zipCode"        validate:"omitempty,len=5"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"          validate:"omitempty,email"`
	WhatsappNumber *string `json:"whatsappNumber" validate:"omitempty,e164"`
	ContactPerson  *string `json:"contactPerson"`
	Notes          *string `json:"notes"`
	Active         *bool   `json:"active"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ShopResponse struct {
	ID             string  `json:"id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	City           string  `json:"city"`
	Province       *string `json:"province,omitempty"`
	ZipCode        *string `json:"zipCode,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty"`
	WhatsappNumber *string `json:"whatsappNumber,omitempty"`
	ContactPerson  *string `json:"contactPerson,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Active         bool    `json:"active"`
}
