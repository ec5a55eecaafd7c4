package orders

import (
	"errors"
	"fmt"

	"github.com/joao-fontenele/orderdesk/internal/domain"
)

var (
	ErrMissingContact     = errors.New("missing contact")
	ErrMalformedItems     = errors.New("malformed items")
	ErrUnknownProduct     = errors.New("unknown product")
	ErrBelowMinimum       = errors.New("below minimum quantity")
	ErrNonIntegerPack     = errors.New("non-integer pack quantity")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrPersistenceFailure = errors.New("persistence failure")
)

var clientErrors = []error{
	ErrMissingContact,
	ErrMalformedItems,
	ErrUnknownProduct,
	ErrBelowMinimum,
	ErrNonIntegerPack,
	ErrInvalidQuantity,
}

// OrderError is a rejection of a submitted order. Kind is one of the
// sentinel errors above; Product is set for item-level rejections.
type OrderError struct {
	Kind    error
	Code    string
	Product *domain.Product
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	msg := e.Kind.Error()
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OrderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsClientError reports whether err rejects the request because of its input.
func IsClientError(err error) bool {
	for _, kind := range clientErrors {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// KindName returns a stable snake_case name for err, used in responses and
// metric attributes.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrMissingContact):
		return "missing_contact"
	case errors.Is(err, ErrMalformedItems):
		return "malformed_items"
	case errors.Is(err, ErrUnknownProduct):
		return "unknown_product"
	case errors.Is(err, ErrBelowMinimum):
		return "below_minimum"
	case errors.Is(err, ErrNonIntegerPack):
		return "non_integer_pack"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrPersistenceFailure):
		return "persistence_failure"
	default:
		return "internal"
	}
}

func productError(kind error, p domain.Product, format string, args ...any) *OrderError {
	return &OrderError{
		Kind:    kind,
		Code:    p.Code,
		Product: &p,
		Message: fmt.Sprintf(format, args...),
	}
}
