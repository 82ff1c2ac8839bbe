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

// ErrImbalancedTransaction indicates a posting request whose entries are empty
// or whose debit and credit sums differ. This is a caller defect: the fixed
// operation recipes always produce balanced entry sets.
var ErrImbalancedTransaction = errors.New("transaction entries are empty or do not balance")

// ErrDuplicateTransaction indicates an idempotency collision on the
// (external_source, external_id) pair. Expected on retried external callbacks.
var ErrDuplicateTransaction = errors.New("transaction with this external reference already exists")

// ErrInsufficientFunds indicates that an overdraft-enforced entry would have
// driven its account balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAccountNotFound indicates that a reconciliation target account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// ErrInvalidReference indicates a reservation id that is unknown, of the wrong
// kind, or a capture/release amount exceeding the remaining reserved amount.
var ErrInvalidReference = errors.New("invalid reservation reference")

// ErrLockTimeout indicates that an account lock could not be acquired within
// the configured wait. The call may be retried.
var ErrLockTimeout = errors.New("timed out waiting for account lock")

// ErrConflict indicates the operation conflicts with existing state, such as
// deleting a row that other rows still reference.
var ErrConflict = errors.New("operation conflicts with existing resources")

// IsRetryable reports whether the caller may safely retry the failed call.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}

// AppError carries an HTTP-ish status code alongside a wrapped cause.
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

// NewAppError creates an AppError wrapping an underlying cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
