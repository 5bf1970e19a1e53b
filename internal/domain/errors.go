package domain

import "errors"

// Sentinel errors for domain-level error handling.
var (
	ErrInvalidArgument       = errors.New("invalid_argument")
	ErrNilReference          = errors.New("nil_reference")
	ErrNotFound              = errors.New("not_found")
	ErrNotListed             = errors.New("not_listed")
	ErrInsufficientInventory = errors.New("insufficient_inventory")
	ErrInsufficientHoldings  = errors.New("insufficient_holdings")
	ErrInsufficientFunds     = errors.New("insufficient_funds")
)

// ValidationError represents a rejected argument. It is reported before any
// state is touched, and matches ErrInvalidArgument under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports whether target is ErrInvalidArgument.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Invalid is shorthand for building a *ValidationError.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}
