// Package apierror defines the JSON error envelopes the API returns.
// Handlers never serialize raw Go errors: gorm and validator details stay in
// the logs, the client always receives an Italian detail message.
package apierror

// APIError is the body of every non-2xx response: {"detail": "..."}.
type APIError struct {
	Detail string `json:"detail"`
}

// New builds an error envelope around a user-facing message.
func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError extends the envelope with the per-field messages produced
// by the request validator.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

// NewValidation wraps field-level validation failures.
func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Errore di validazione", Fields: fields}
}
