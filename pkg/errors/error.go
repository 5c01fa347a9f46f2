// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters and configuration
//   - Graph errors (900-999): Graph structure, compilation and rendering failures
//   - Runner errors (1000-1099): External framework invocation failures
//   - History errors (1100-1199): Export history storage failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeEmptyGraph, "graph is empty")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeDuplicateNode, "node %s already exists", id)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeRenderFailed, "failed to render strategy", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeCyclicGraph) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Details holds one human-readable line per individual problem, e.g. each
	// missing node category or the node ids along a detected cycle.
	Details []string
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
		Details: nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
		Details: nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
		Details: nil,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
		Details: nil,
	}
}

// WithDetails returns the error with the given detail lines attached.
func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetDetails returns the detail lines of the first *Error in err's chain.
func GetDetails(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}

	return nil
}
