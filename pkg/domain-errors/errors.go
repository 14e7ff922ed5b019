// Package dErrors provides coded domain errors shared across modules.
// Stores return sentinel errors (pkg/platform/sentinel); services translate
// them into these coded errors; the HTTP layer maps codes to status lines.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping and policy decisions.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodePlanLimit          Code = "plan_limit"
	CodeConflict           Code = "conflict"
	CodeNotFound           Code = "not_found"
	CodeUnavailable        Code = "unavailable"
	CodeBadGateway         Code = "bad_gateway"
	CodeInternal           Code = "internal"
	CodeInvariantViolation Code = "invariant_violation"
)

// DomainError carries a code, a human-readable message, and optional
// structured hints surfaced to API clients (e.g. the plan required to unlock
// a gated feature).
type DomainError struct {
	Code    Code
	Message string
	Meta    map[string]string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.cause }

// New constructs a coded domain error.
func New(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Newf constructs a coded domain error with a formatted message.
func Newf(code Code, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As chains.
func Wrap(err error, code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, cause: err}
}

// WithMeta returns a copy of the error carrying an additional structured hint.
func (e *DomainError) WithMeta(key, value string) *DomainError {
	meta := make(map[string]string, len(e.Meta)+1)
	for k, v := range e.Meta {
		meta[k] = v
	}
	meta[key] = value
	return &DomainError{Code: e.Code, Message: e.Message, Meta: meta, cause: e.cause}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code of err, or CodeInternal when err carries
// no domain code.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
