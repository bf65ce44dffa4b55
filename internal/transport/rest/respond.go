package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/owl-backend/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// handleError maps a service error to an HTTP response. Remote lookup
// failures keep their kind so clients can pick a user-facing message.
func handleError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var lookupErr *domain.LookupError
	switch {
	case errors.As(err, &lookupErr):
		writeJSON(w, lookupStatus(lookupErr.Kind), errorResponse{
			Error: lookupMessage(lookupErr.Kind),
			Kind:  string(lookupErr.Kind),
		})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func lookupStatus(kind domain.LookupErrorKind) int {
	switch kind {
	case domain.LookupNotFound:
		return http.StatusNotFound
	case domain.LookupUnauthorized:
		return http.StatusUnauthorized
	case domain.LookupThrottled:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func lookupMessage(kind domain.LookupErrorKind) string {
	switch kind {
	case domain.LookupNotFound:
		return "word not found"
	case domain.LookupUnauthorized:
		return "dictionary service rejected the request"
	case domain.LookupThrottled:
		return "too many requests, try again later"
	default:
		return "dictionary service unavailable"
	}
}
