// Package errors provides structured error types for netsmith.
//
// Every failure the layout engine can surface carries a machine-readable
// [Code], so callers can branch on the category without string matching:
//   - INVALID_*: caller bugs (bad resource id, bad direction, bad bounds)
//   - NOT_FOUND: entity resolution failed after exact and fallback matching
//   - REMOTE_OPERATION: the appliance rejected a request
//   - CACHE_SYNC: the appliance applied a mutation but the local mirror could not be refreshed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidResource, "resource must be positive, got %d", r)
//	if errors.Is(err, errors.ErrCodeInvalidResource) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRemoteOperation, origErr, "add_vr %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidResource  Code = "INVALID_RESOURCE"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"
	ErrCodeInvalidBounds    Code = "INVALID_BOUNDS"
	ErrCodeInvalidRecord    Code = "INVALID_RECORD"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeEmptyInput       Code = "EMPTY_INPUT"

	// Lookup errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Remote and transport errors
	ErrCodeRemoteOperation Code = "REMOTE_OPERATION"
	ErrCodeCacheSync       Code = "CACHE_SYNC"
	ErrCodeNetwork         Code = "NETWORK_ERROR"
	ErrCodeTimeout         Code = "TIMEOUT"
	ErrCodeLockTimeout     Code = "LOCK_TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It walks the whole error chain, so a CACHE_SYNC error wrapping a
// NETWORK_ERROR matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
