// Package domainerrors defines the code-bearing error type shared by all
// services and handlers. Expected denial paths (record not visible, illegal
// transition, failed validation) are normal typed returns, never panics;
// only infrastructural failures surface as internal errors.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping and programmatic checks.
type Code string

const (
	// CodeBadRequest covers malformed requests (unparseable JSON, bad IDs in paths).
	CodeBadRequest Code = "bad_request"
	// CodeValidation covers structural/field-level problems on create/update.
	// Errors with this code usually carry per-field Details.
	CodeValidation Code = "validation_error"
	// CodeInvalidInput covers a single rejected value at a trust boundary.
	CodeInvalidInput Code = "invalid_input"
	// CodeUnauthenticated covers missing, invalid, or expired identity claims.
	CodeUnauthenticated Code = "unauthenticated"
	// CodeForbidden covers a visible record the actor may not mutate.
	CodeForbidden Code = "forbidden"
	// CodeNotFound covers both absent records and records outside the
	// actor's scope; the two are deliberately indistinguishable to callers.
	CodeNotFound Code = "not_found"
	// CodeInvalidTransition covers a status change not in the lifecycle table.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeConflict covers a record mutated concurrently; callers should
	// re-fetch and retry.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation covers a broken domain invariant. Services
	// convert it to CodeValidation before it reaches the API surface.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal covers unexpected persistence or transport failures.
	CodeInternal Code = "internal_error"
)

// Error is the domain error type. Message is safe to surface for every code
// except CodeInternal and CodeInvariantViolation, whose details stay in logs.
type Error struct {
	Code    Code
	Message string
	// Details names individual violated field constraints for
	// CodeValidation errors, one entry per field.
	Details []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// New constructs a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is checks against sentinel values.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetails constructs a validation-style error carrying per-field details.
func WithDetails(code Code, message string, details []string) error {
	return &Error{Code: code, Message: message, Details: details}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var derr *Error
	for errors.As(err, &derr) {
		if derr.Code == code {
			return true
		}
		err = derr.cause
		if err == nil {
			return false
		}
	}
	return false
}

// Is is shorthand for HasCode, mirroring errors.Is call sites in tests.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// GetCode returns the outermost domain error code, or CodeInternal when err
// is not a domain error. Nil maps to the empty code.
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Code
	}
	return CodeInternal
}

// Details returns the per-field detail list of the outermost domain error.
func Details(err error) []string {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Details
	}
	return nil
}

// ToHTTPStatus maps a code onto its HTTP status. Unknown codes map to 500 so
// a missed case never fails open.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition, CodeConflict:
		return http.StatusConflict
	case CodeInvariantViolation, CodeInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
