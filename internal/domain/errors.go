package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// LookupErrorKind is the user-facing category of a failed remote lookup.
type LookupErrorKind string

const (
	LookupUnauthorized LookupErrorKind = "unauthorized"
	LookupNotFound     LookupErrorKind = "not_found"
	LookupThrottled    LookupErrorKind = "throttled"
	LookupNetwork      LookupErrorKind = "network"
)

// ClassifyStatus maps an HTTP status code returned by a remote dictionary API
// to a LookupErrorKind. Anything other than 401, 404 and 429 is a network error.
func ClassifyStatus(code int) LookupErrorKind {
	switch code {
	case http.StatusUnauthorized:
		return LookupUnauthorized
	case http.StatusNotFound:
		return LookupNotFound
	case http.StatusTooManyRequests:
		return LookupThrottled
	default:
		return LookupNetwork
	}
}

// LookupError reports a failed remote lookup for a word. It is never retried
// by the cache layer; callers surface it to the user.
type LookupError struct {
	Word string
	Kind LookupErrorKind
	Err  error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lookup %q: %s: %v", e.Word, e.Kind, e.Err)
	}
	return fmt.Sprintf("lookup %q: %s", e.Word, e.Kind)
}

func (e *LookupError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match a not_found lookup.
func (e *LookupError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == LookupNotFound
}
