package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/service/wordcache"
)

type wordService interface {
	Lookup(ctx context.Context, word string) (*wordcache.LookupResult, error)
	GetCachedWord(ctx context.Context, word string) (*domain.Word, error)
	Forget(ctx context.Context, word string) (bool, error)
}

// WordHandler serves word lookup endpoints.
type WordHandler struct {
	svc wordService
	log *slog.Logger
}

// NewWordHandler creates a WordHandler.
func NewWordHandler(svc wordService, logger *slog.Logger) *WordHandler {
	return &WordHandler{svc: svc, log: logger.With("handler", "words")}
}

// Lookup returns the word from the cache, fetching it remotely on a miss.
// GET /api/words/{word}
func (h *WordHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Lookup(r.Context(), r.PathValue("word"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	cacheStatus := "MISS"
	if res.FromCache {
		cacheStatus = "HIT"
	}
	w.Header().Set("X-Cache", cacheStatus)
	writeJSON(w, http.StatusOK, lookupResponse{
		wordResponse: toWordResponse(res.Word),
		FromCache:    res.FromCache,
	})
}

// Cached returns the word only if it is already cached.
// GET /api/words/{word}/cached
func (h *WordHandler) Cached(w http.ResponseWriter, r *http.Request) {
	word, err := h.svc.GetCachedWord(r.Context(), r.PathValue("word"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if word == nil {
		writeError(w, http.StatusNotFound, "word not cached")
		return
	}
	writeJSON(w, http.StatusOK, toWordResponse(word))
}

// Forget drops the word from the cache.
// DELETE /api/words/{word}
func (h *WordHandler) Forget(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.Forget(r.Context(), r.PathValue("word"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "word not cached")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
