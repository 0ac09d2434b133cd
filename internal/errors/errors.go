package errors

import "errors"

// ErrNotFound indicates a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrCartNotFound indicates the referenced session cart does not exist.
var ErrCartNotFound = errors.New("cart not found")

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
