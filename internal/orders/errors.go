package orders

import "errors"

// Failure taxonomy for order commit. Each maps to one client-visible outcome;
// none are swallowed.
var (
	ErrInvalidPayMethod    = errors.New("invalid payment method")
	ErrInvalidAddress      = errors.New("address does not exist or is not yours")
	ErrProductNotFound     = errors.New("product not found")
	ErrNotInCart           = errors.New("product not in cart")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrReservationConflict = errors.New("reservation conflict, try again")
	ErrNotFound            = errors.New("order not found")
	ErrWrongState          = errors.New("order not in the required state")
)
