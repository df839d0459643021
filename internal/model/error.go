package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeStaleCart         = "STALE_CART"
	ErrCodeInvalidCoupon     = "INVALID_COUPON"
	ErrCodeNotEligible       = "NOT_ELIGIBLE"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so detailed
// variants still match the package sentinels under errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Detail returns a copy of a sentinel carrying a more specific message.
func Detail(sentinel *DomainError, format string, args ...any) *DomainError {
	return NewDomainError(sentinel.Code, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError(ErrCodeNotFound, "Requested item was not found")
	ErrValidation        = NewDomainError(ErrCodeValidation, "Invalid data")
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrStaleCart         = NewDomainError(ErrCodeStaleCart, "Some items in your cart are no longer available")
	ErrInvalidCoupon     = NewDomainError(ErrCodeInvalidCoupon, "Invalid coupon code")
	ErrNotEligible       = NewDomainError(ErrCodeNotEligible, "You can review only after a delivered order")
	ErrForbidden         = NewDomainError(ErrCodeForbidden, "Access denied")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Invalid order status")
)
