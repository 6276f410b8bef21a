package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrCurrencyMismatch indicates that a transaction's currency does not match the account's currency.
var ErrCurrencyMismatch = errors.New("transaction currency does not match account currency")

// ErrUnsupportedCurrency indicates that a currency code is not present in the reference data.
var ErrUnsupportedCurrency = errors.New("currency is not supported")

// ErrInsufficientFunds indicates that the account balance cannot cover the requested amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidTransactionKind indicates a transaction kind outside the known set.
var ErrInvalidTransactionKind = errors.New("invalid transaction kind")

// ErrAccountFrozen indicates that the account owner is blocked and the
// requested mutation is not allowed until the owner is unblocked.
var ErrAccountFrozen = errors.New("account owner is frozen")

// ErrAccountClosed indicates that the account has been closed and no longer accepts mutations.
var ErrAccountClosed = errors.New("account is closed")

// ErrConcurrencyConflict indicates that a concurrent writer modified the row
// between our lock-read and our conditional update. The caller may resubmit.
var ErrConcurrencyConflict = errors.New("concurrent modification detected")

// ErrInvariantViolation indicates a broken internal invariant (a programming
// error, not a user error). It must be logged at error severity and never
// silently swallowed.
var ErrInvariantViolation = errors.New("invariant violation")

// AppError carries an HTTP-ish status code alongside a message and the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
