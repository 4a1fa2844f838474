package engine

import "errors"

// Business-rule failures surfaced to callers as distinct kinds. None of these
// is retriable; each reflects a rejected lifecycle event, not a transient
// fault. Storage failures propagate as ordinary wrapped errors instead.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("transaction amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient budget")
	ErrCategoryMismatch  = errors.New("transaction category must match the category of the associated budget")
	ErrInvalidState      = errors.New("invalid amount value while restoring budget")
)
