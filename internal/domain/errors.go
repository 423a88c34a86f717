package domain

import "errors"

// Typed failure conditions returned by the accounting engine and the ledger
// stores. All are recoverable by the caller; none leave a partially mutated
// snapshot behind. Callers discriminate with errors.Is.
var (
	ErrMissingCashAccount   = errors.New("missing cash account")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrInvalidOrderInput    = errors.New("invalid order input")
	ErrPersistence          = errors.New("persistence failure")
	ErrNotFound             = errors.New("not found")
)
