package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/owl-backend/internal/domain"
)

type wordList interface {
	Add(ctx context.Context, word string) error
	Remove(ctx context.Context, word string) error
	RemoveAll(ctx context.Context) error
	Snapshot() []string
	Subscribe(ctx context.Context) <-chan []string
}

const defaultHeartbeat = 30 * time.Second

// ListHandler serves the history and favourites lists.
type ListHandler struct {
	lists     map[domain.WordList]wordList
	log       *slog.Logger
	heartbeat time.Duration
}

// NewListHandler creates a ListHandler over the history and favourites lists.
func NewListHandler(history, favourites wordList, logger *slog.Logger) *ListHandler {
	return &ListHandler{
		lists: map[domain.WordList]wordList{
			domain.ListHistory:    history,
			domain.ListFavourites: favourites,
		},
		log:       logger.With("handler", "lists"),
		heartbeat: defaultHeartbeat,
	}
}

// Names returns the lists the handler serves.
func (h *ListHandler) Names() []domain.WordList {
	return []domain.WordList{domain.ListHistory, domain.ListFavourites}
}

// Get returns the list members.
// GET /api/{list}
func (h *ListHandler) Get(name domain.WordList) http.HandlerFunc {
	list := h.lists[name]
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, listResponse{List: name.String(), Words: list.Snapshot()})
	}
}

// Add inserts a word.
// PUT /api/{list}/{word}
func (h *ListHandler) Add(name domain.WordList) http.HandlerFunc {
	list := h.lists[name]
	return func(w http.ResponseWriter, r *http.Request) {
		if err := list.Add(r.Context(), r.PathValue("word")); err != nil {
			handleError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{List: name.String(), Words: list.Snapshot()})
	}
}

// Remove deletes a word.
// DELETE /api/{list}/{word}
func (h *ListHandler) Remove(name domain.WordList) http.HandlerFunc {
	list := h.lists[name]
	return func(w http.ResponseWriter, r *http.Request) {
		if err := list.Remove(r.Context(), r.PathValue("word")); err != nil {
			handleError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{List: name.String(), Words: list.Snapshot()})
	}
}

// Clear empties the list.
// DELETE /api/{list}
func (h *ListHandler) Clear(name domain.WordList) http.HandlerFunc {
	list := h.lists[name]
	return func(w http.ResponseWriter, r *http.Request) {
		if err := list.RemoveAll(r.Context()); err != nil {
			handleError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{List: name.String(), Words: []string{}})
	}
}

// Stream sends the list as server-sent events: the current members first,
// then the members after every change.
// GET /api/{list}/stream
func (h *ListHandler) Stream(name domain.WordList) http.HandlerFunc {
	list := h.lists[name]
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		// The stream outlives the server write timeout.
		_ = rc.SetWriteDeadline(time.Time{})

		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		updates := list.Subscribe(r.Context())

		heartbeat := time.NewTicker(h.heartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case words, ok := <-updates:
				if !ok {
					return
				}
				data, err := json.Marshal(listResponse{List: name.String(), Words: words})
				if err != nil {
					h.log.ErrorContext(r.Context(), "marshal list snapshot", slog.String("error", err.Error()))
					return
				}
				if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ":\n\n"); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			}
		}
	}
}
