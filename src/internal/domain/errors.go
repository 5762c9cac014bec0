package domain

import (
	"errors"
	"fmt"
)

// RejectionError marks a validation or business-rule failure. A rejected
// command leaves the account untouched and produces no events.
type RejectionError struct {
	msg string
}

func (e *RejectionError) Error() string {
	return e.msg
}

func rejection(msg string) *RejectionError {
	return &RejectionError{msg: msg}
}

var (
	ErrInvalidIdentity      = rejection("invalid pesel")
	ErrInvalidOwnerData     = rejection("invalid owner data")
	ErrAlreadyRegistered    = rejection("account already registered")
	ErrUnderageOwner        = rejection(fmt.Sprintf("owner of account must be at least %d years old", MinOwnerAge))
	ErrInvalidOperation     = rejection("invalid operation")
	ErrUnsupportedCurrency  = rejection("unsupported currency")
	ErrInsufficientFunds    = rejection("insufficient funds")
	ErrAccountNotRegistered = rejection("account is not registered")
	ErrCurrencyMismatch     = rejection("currency mismatch")
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrRateUnavailable = errors.New("exchange rate unavailable")
	ErrCorruptedEvent  = errors.New("stored event is corrupted")
	ErrUnknownEvent    = errors.New("unknown event type")
)

// InvalidIdentityError carries the rejected raw identifier.
type InvalidIdentityError struct {
	Raw string
}

func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("pesel %s is invalid", e.Raw)
}

func (e *InvalidIdentityError) Unwrap() error {
	return ErrInvalidIdentity
}

// InsufficientFundsError names the sub-account that could not cover a debit.
type InsufficientFundsError struct {
	Currency Currency
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on %s sub-account", e.Currency)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// IsRejection reports whether err is a domain rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	var rejected *RejectionError
	return errors.As(err, &rejected)
}

func errorf(base error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{base}, args...)...)
}
