package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies application failures for transport mapping.
type ErrorKind int

const (
	KindInvalidArgument ErrorKind = iota
	KindNotFound
	KindConflict
	KindUnavailable
	KindInternal
)

// AppError is the error type surfaced by services. Kind drives the HTTP
// status, Code is the machine-readable API code, and Step names the
// workflow step that failed in multi-step operations so callers can
// retry safely.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Step    string
	Err     error
}

func (e *AppError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("%s: %s (step %s)", e.Code, e.Message, e.Step)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to an HTTP status code.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidArgument:
		return 400
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	case KindUnavailable:
		return 503
	default:
		return 500
	}
}

// InvalidArgument builds a client error for a missing or malformed field.
func InvalidArgument(code, message string) *AppError {
	return &AppError{Kind: KindInvalidArgument, Code: code, Message: message}
}

// NotFound builds a client error naming the missing entity and lookup key.
func NotFound(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

// Conflict builds an error for a uniqueness violation detected at the store.
func Conflict(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

// Internal wraps an unexpected store or I/O failure. step names the
// workflow step that failed, empty for single-step operations.
func Internal(step string, err error) *AppError {
	return &AppError{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "unexpected server error", Step: step, Err: err}
}

// AsAppError extracts an *AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive    = errors.New("ACCOUNT_INACTIVE")
)
