package domain

import "errors"

// Order errors
var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidInput      = errors.New("invalid input")
)

// ValidateTransition checks from -> to against the order lifecycle
func ValidateTransition(from, to StatusID) error {
	if !from.Valid() || !to.Valid() {
		return ErrInvalidStatus
	}
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}
