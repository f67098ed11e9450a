// Package restapir contains the shared types used across the engine's
// subpackages: the error shape, ambient logging configuration, retry/sleep
// helpers, a bounded task runner and the default JSON codec.
package restapir

import "fmt"

// ErrorCode enumerates the error categories the engine can surface, per the
// error kinds named in the specification.
type ErrorCode int

const (
	// Unknown represents an unspecified error condition.
	Unknown ErrorCode = iota

	// Transformation/script layer.

	// UnknownOperator is returned when a transformation template names a
	// key that does not match any registered operator.
	UnknownOperator
	// InvalidOperatorArgument is returned when an operator's argument does
	// not decode into the shape that operator requires.
	InvalidOperatorArgument

	// Script layer.

	// StepBudgetExceeded is returned when a script's step counter exceeds
	// its configured (or default) maxSteps.
	StepBudgetExceeded
	// ConcurrentRun is returned when Run is called on a script instance
	// that already has an activation in flight.
	ConcurrentRun
	// MissingName is returned when a script definition has no name.
	MissingName
	// MissingSteps is returned when a script definition has no steps.
	MissingSteps

	// Query layer.

	// ParseError is returned when a query string fails to parse.
	ParseError
	// UnknownEntity is returned when a query names a model that has no
	// registered backing Model.
	UnknownEntity
	// UnsupportedOperation is returned when a model does not implement the
	// requested operation.
	UnsupportedOperation
	// UnknownField is returned when a query requests a field the model's
	// JSON schema does not declare.
	UnknownField
	// PermissionDenied is returned when a Context's access predicate
	// rejects an operation.
	PermissionDenied

	// Auth layer.

	// InvalidGrant is returned when a token request body fails validation.
	InvalidGrant
	// InvalidCredentials is returned when a username/password or bearer
	// token fails to authenticate.
	InvalidCredentials
)

// String returns a short human-readable name for the error code, used in
// Error's message and convenient for test assertions.
func (c ErrorCode) String() string {
	switch c {
	case UnknownOperator:
		return "UnknownOperator"
	case InvalidOperatorArgument:
		return "InvalidOperatorArgument"
	case StepBudgetExceeded:
		return "StepBudgetExceeded"
	case ConcurrentRun:
		return "ConcurrentRun"
	case MissingName:
		return "MissingName"
	case MissingSteps:
		return "MissingSteps"
	case ParseError:
		return "ParseError"
	case UnknownEntity:
		return "UnknownEntity"
	case UnsupportedOperation:
		return "UnsupportedOperation"
	case UnknownField:
		return "UnknownField"
	case PermissionDenied:
		return "PermissionDenied"
	case InvalidGrant:
		return "InvalidGrant"
	case InvalidCredentials:
		return "InvalidCredentials"
	default:
		return "Unknown"
	}
}

// Error is the engine-wide error type, carrying a code, the wrapped cause
// and optional user data (the offending operator name, field, label, etc).
type Error struct {
	Code     ErrorCode
	Err      error
	UserData any
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.UserData != nil {
		return fmt.Errorf("%s: %w (%v)", e.Code, e.Err, e.UserData).Error()
	}
	return fmt.Errorf("%s: %w", e.Code, e.Err).Error()
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e Error) Unwrap() error {
	return e.Err
}

// New builds an Error with the given code and message.
func New(code ErrorCode, msg string) Error {
	return Error{Code: code, Err: fmt.Errorf("%s", msg)}
}

// Newf builds an Error with the given code and a formatted message.
func Newf(code ErrorCode, format string, args ...any) Error {
	return Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// WithData returns a copy of e carrying the given user data.
func (e Error) WithData(data any) Error {
	e.UserData = data
	return e
}
