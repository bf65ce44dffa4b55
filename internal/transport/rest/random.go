package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/owl-backend/internal/service/randomword"
)

type randomService interface {
	GetLocalPick(ctx context.Context) (randomword.Pick, error)
	GetRemoteRandomWord(ctx context.Context) (randomword.Pick, error)
}

// RandomHandler serves random word suggestions.
type RandomHandler struct {
	svc randomService
	log *slog.Logger
}

// NewRandomHandler creates a RandomHandler.
func NewRandomHandler(svc randomService, logger *slog.Logger) *RandomHandler {
	return &RandomHandler{svc: svc, log: logger.With("handler", "random")}
}

// Random returns a random word.
// GET /api/random?source=local|remote
func (h *RandomHandler) Random(w http.ResponseWriter, r *http.Request) {
	switch source := r.URL.Query().Get("source"); source {
	case "", string(randomword.SourceLocal):
		pick, err := h.svc.GetLocalPick(r.Context())
		if err != nil {
			handleError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, randomResponse{Word: pick.Word, Source: string(pick.Source)})
	case string(randomword.SourceRemote):
		pick, err := h.svc.GetRemoteRandomWord(r.Context())
		if err != nil {
			handleError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, randomResponse{Word: pick.Word, Source: string(pick.Source)})
	default:
		writeError(w, http.StatusBadRequest, "source must be local or remote")
	}
}
