package services

import "errors"

// Error taxonomy shared by the ledger, the commission engine and the
// withdrawal flow. Controllers map these onto HTTP statuses with
// errors.Is; anything else is a storage failure and retryable.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
