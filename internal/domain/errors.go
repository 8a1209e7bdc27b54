// Package domain defines core types, interfaces, and errors for the bank demo.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrorKind names one specific failure reported across the API boundary.
type ErrorKind string

// Validation kinds.
const (
	KindMissingFields     ErrorKind = "MissingFields"
	KindInvalidAmount     ErrorKind = "InvalidAmount"
	KindNonPositiveAmount ErrorKind = "NonPositiveAmount"
	KindInvalidBody       ErrorKind = "InvalidBody"
)

// Authentication kinds.
const (
	KindInvalidCredentials ErrorKind = "InvalidCredentials"
	KindNoToken            ErrorKind = "NoToken"
	KindMalformedHeader    ErrorKind = "MalformedHeader"
	KindInvalidToken       ErrorKind = "InvalidToken"
	KindTokenExpired       ErrorKind = "TokenExpired"
)

// State kinds.
const (
	KindInsufficientFunds ErrorKind = "InsufficientFunds"
	KindNotFound          ErrorKind = "NotFound"
	KindConflict          ErrorKind = "Conflict"
)

// KindInternal is reported for anything unclassified.
const KindInternal ErrorKind = "InternalError"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AuthError indicates a failed credential check or token verification.
// ExpiredAt is set only for KindTokenExpired. Cause is kept for server-side
// logging and never rendered to clients.
type AuthError struct {
	Kind      ErrorKind
	Message   string
	ExpiredAt *time.Time
	Cause     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Cause }

// InsufficientFundsError is returned by a debit that would overdraw the account.
type InsufficientFundsError struct {
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, requested %s", e.Balance, e.Requested)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError of the given kind with a formatted message.
func ErrValidation(kind ErrorKind, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrAuth creates an AuthError of the given kind.
func ErrAuth(kind ErrorKind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

// ErrTokenExpired creates an AuthError that reports when the token stopped being valid.
func ErrTokenExpired(expiredAt time.Time) *AuthError {
	return &AuthError{
		Kind:      KindTokenExpired,
		Message:   fmt.Sprintf("token expired at %s", expiredAt.UTC().Format(time.RFC3339)),
		ExpiredAt: &expiredAt,
	}
}

// KindOf returns the ErrorKind carried by err, or KindInternal.
func KindOf(err error) ErrorKind {
	var (
		validation   *ValidationError
		auth         *AuthError
		insufficient *InsufficientFundsError
		notFound     *NotFoundError
		conflict     *ConflictError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validation):
		return validation.Kind
	case errors.As(err, &auth):
		return auth.Kind
	case errors.As(err, &insufficient):
		return KindInsufficientFunds
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &conflict):
		return KindConflict
	default:
		return KindInternal
	}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
