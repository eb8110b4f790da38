// Package errors provides structured error types for depstack.
//
// Errors carry a machine-readable [Code] alongside a human-readable message
// and an optional cause, so the CLI and the HTTP API can map failures to
// exit codes and status codes without string matching.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - PROVIDER_*: provider call failures during expansion/materialization
//   - ALIAS_*: alias combination failures
//   - CONFIG_*: malformed inputs before expansion begins
//   - NOT_FOUND / NETWORK_*: resource and transport failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfig, "no coordinate for %s", lib)
//	if errors.Is(err, errors.ErrCodeConfig) {
//	    // handle malformed input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeProvider, cause, "deps of %s %s", lib, coord)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Provider call failures (I/O, parse, missing artifact, bad coord).
	// Any provider error is fatal to resolution.
	ErrCodeProvider     Code = "PROVIDER_ERROR"
	ErrCodeInvalidCoord Code = "INVALID_COORD"
	ErrCodeIncomparable Code = "INCOMPARABLE_VERSIONS"
	ErrCodeManifest     Code = "INVALID_MANIFEST"

	// Alias combination failures (unknown alias name or key).
	ErrCodeAlias Code = "ALIAS_ERROR"

	// Malformed inputs rejected before expansion begins.
	ErrCodeConfig Code = "CONFIG_ERROR"

	// Resource not found (artifact, manifest, stored resolution).
	ErrCodeNotFound Code = "NOT_FOUND"

	// Transport failures.
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors.
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// Is reports whether err carries the given error code anywhere in its chain.
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
