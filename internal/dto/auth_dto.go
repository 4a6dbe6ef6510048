package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// LoginResponse is the flat token + profile object the client persists in
// its session store and re-reads on startup.
type LoginResponse struct {
	Token    string  `json:"token"`
	Username string  `json:"username"`
	FullName string  `json:"fullName"`
	Role     string  `json:"role"`
	ShopID   *string `json:"shopId,omitempty"`
}
