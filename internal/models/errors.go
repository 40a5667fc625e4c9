package models

import "fmt"

// Error codes surfaced to callers
const (
	ErrCodeInvalidInput            = "INVALID_INPUT"
	ErrCodeNoOutletAvailable       = "NO_OUTLET_AVAILABLE"
	ErrCodeProductUnavailable      = "PRODUCT_UNAVAILABLE"
	ErrCodeOrderCreationFailed     = "ORDER_CREATION_FAILED"
	ErrCodeOrderItemsFailed        = "ORDER_ITEMS_CREATION_FAILED"
	ErrCodeInvalidStateTransition  = "INVALID_STATE_TRANSITION"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeStoreUnavailable        = "STORE_UNAVAILABLE"
)

// DomainError is a typed business failure with a stable code.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapDomainError creates a domain error wrapping an underlying cause.
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// Common domain errors
var (
	ErrEmptySymptoms     = NewDomainError(ErrCodeInvalidInput, "symptoms must be a non-empty list")
	ErrEmptyItems        = NewDomainError(ErrCodeInvalidInput, "order must contain at least one item")
	ErrNoOutletAvailable = NewDomainError(ErrCodeNoOutletAvailable, "no active outlet can serve this location")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "order not found")
)
