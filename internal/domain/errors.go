// Package domain defines core types, interfaces, and errors for the table hub.
package domain

import (
	"errors"
	"fmt"
)

// Reason codes carried by ValidationError.
const (
	ReasonInvalidArgument      = "INVALID_ARGUMENT"
	ReasonInvalidName          = "INVALID_NAME"
	ReasonNameTooLong          = "NAME_TOO_LONG"
	ReasonInvalidGeneratedName = "INVALID_GENERATED_NAME"
	ReasonNoStableOrder        = "NO_STABLE_ORDER"
	ReasonUnsupportedType      = "UNSUPPORTED_TYPE"
	ReasonDuplicateColumns     = "DUPLICATE_COLUMNS"
	ReasonReservedName         = "RESERVED_NAME"
	ReasonNoData               = "NO_DATA"
)

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// UnauthenticatedError indicates the caller identity is missing.
type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string { return e.Message }

// ValidationError indicates invalid input. Reason is one of the Reason* codes.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate name).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// EngineError wraps an unclassified failure of the storage engine. Error()
// is safe to show to callers; the cause is only meant for logs.
type EngineError struct {
	Op    string
	Cause error
}

func (e *EngineError) Error() string { return "storage engine error during " + e.Op }

func (e *EngineError) Unwrap() error { return e.Cause }

// CompensationError is returned when a multi-step operation failed and at
// least one of its undo actions failed too. Unwrap yields the primary cause.
type CompensationError struct {
	Cause    error
	Failures []error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%v (compensation failed: %v)", e.Cause, errors.Join(e.Failures...))
}

func (e *CompensationError) Unwrap() error { return e.Cause }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnauthenticated creates an UnauthenticatedError with a formatted message.
func ErrUnauthenticated(format string, args ...interface{}) *UnauthenticatedError {
	return &UnauthenticatedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with reason INVALID_ARGUMENT.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: ReasonInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// ErrInvalid creates a ValidationError with the given reason code.
func ErrInvalid(reason, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrEngine wraps cause as an EngineError for operation op.
func ErrEngine(op string, cause error) *EngineError {
	return &EngineError{Op: op, Cause: cause}
}

// ReasonOf returns the validation reason of err, or "" when err is not a
// ValidationError.
func ReasonOf(err error) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Reason
	}
	return ""
}
