package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateUserRequest struct {
	Username       string  `json:"username" validate:"required,min=1,max=150"`
	FullName       string  `json:"fullName" validate:"required,min=2,max=100"`
	Email          *string `json:"email"    validate:"omitempty,email"`
	Phone          *string `json:"phone"`
	WhatsappNumber *string `json:"whatsappNumber" validate:"omitempty,e164"`
	Password       string  `json:"password" validate:"required,min=8"`
	Role           string  `json:"role"     validate:"required,oneof=ADMIN ACCOUNTANT DRIVER SHOP"`
	// ShopID is required when Role is SHOP; checked in the service.
	ShopID *string `json:"shopId" validate:"omitempty,uuid"`
}

type UpdateUserRequest struct {
	FullName       *string `json:"fullName" validate:"omitempty,min=2,max=100"`
	Email          *string `json:"email"    validate:"omitempty,email"`
	Phone          *string `json:"phone"`
	WhatsappNumber *string `json:"whatsappNumber" validate:"omitempty,e164"`
	Password       *string `json:"password" validate:"omitempty,min=8"`
	Role           *string `json:"role"     validate:"omitempty,oneof=ADMIN ACCOUNTANT DRIVER SHOP"`
	ShopID         *string `json:"shopId"   validate:"omitempty,uuid"`
	Active         *bool   `json:"active"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	FullName       string  `json:"fullName"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	WhatsappNumber *string `json:"whatsappNumber,omitempty"`
	Role           string  `json:"role"`
	ShopID         *string `json:"shopId,omitempty"`
	ShopName       *string `json:"shopName,omitempty"`
	Active         bool    `json:"active"`
}
