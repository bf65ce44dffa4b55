package domain

import (
	"errors"
	"net/http"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("word", "required")

	if got := err.Error(); got != "validation: word: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "word", Message: "required"},
		{Field: "meanings", Message: "at least one required"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want LookupErrorKind
	}{
		{http.StatusUnauthorized, LookupUnauthorized},
		{http.StatusNotFound, LookupNotFound},
		{http.StatusTooManyRequests, LookupThrottled},
		{http.StatusInternalServerError, LookupNetwork},
		{http.StatusForbidden, LookupNetwork},
		{999, LookupNetwork},
	}
	for _, tt := range tests {
		if got := ClassifyStatus(tt.code); got != tt.want {
			t.Errorf("ClassifyStatus(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestLookupError_IsNotFound(t *testing.T) {
	t.Parallel()

	notFound := &LookupError{Word: "zzz", Kind: LookupNotFound}
	if !errors.Is(notFound, ErrNotFound) {
		t.Fatal("not_found lookup should match ErrNotFound")
	}

	throttled := &LookupError{Word: "cat", Kind: LookupThrottled}
	if errors.Is(throttled, ErrNotFound) {
		t.Fatal("throttled lookup should not match ErrNotFound")
	}
}

func TestLookupError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := &LookupError{Word: "cat", Kind: LookupNetwork, Err: cause}

	if !errors.Is(err, cause) {
		t.Fatal("errors.Is(err, cause) = false")
	}
	if got := err.Error(); got != `lookup "cat": network: dial tcp: connection refused` {
		t.Fatalf("unexpected Error(): %q", got)
	}
}
