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

// ErrForbidden indicates the acting user lacks the capability for the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrConflict indicates transient contention (e.g. a lock wait timed out).
// Callers may safely retry.
var ErrConflict = errors.New("operation conflicted, retry")

// ErrInsufficientFunds indicates a debit would take an account balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInsufficientHoldings indicates a sell exceeds the current stock holding.
var ErrInsufficientHoldings = errors.New("insufficient holdings")

// ErrAlreadyPaid indicates a tax obligation was already settled.
var ErrAlreadyPaid = errors.New("already paid")

// ErrAlreadySettled indicates a fund or enrollment is already in a terminal state.
var ErrAlreadySettled = errors.New("already settled")

// ErrAlreadyMatured indicates a savings enrollment has already matured.
var ErrAlreadyMatured = errors.New("already matured")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside the wrapped cause.
// Repositories use it for infrastructure failures; services and handlers
// match on the sentinel errors above via errors.Is.
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

// NewNotFoundError creates an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
