package rest

import (
	"net/http"

	"github.com/heartmarshall/owl-backend/internal/transport/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health  *HealthHandler
	Words   *WordHandler
	Random  *RandomHandler
	Lists   *ListHandler
	Metrics http.Handler
}

// NewRouter registers all routes. lookupLimit wraps the endpoints that may
// reach the remote dictionary; nil disables it.
func NewRouter(h Handlers, lookupLimit middleware.Middleware) *http.ServeMux {
	if lookupLimit == nil {
		lookupLimit = middleware.Chain()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	mux.Handle("GET /api/words/{word}", lookupLimit(http.HandlerFunc(h.Words.Lookup)))
	mux.HandleFunc("GET /api/words/{word}/cached", h.Words.Cached)
	mux.HandleFunc("DELETE /api/words/{word}", h.Words.Forget)
	mux.Handle("GET /api/random", lookupLimit(http.HandlerFunc(h.Random.Random)))

	for _, name := range h.Lists.Names() {
		base := "/api/" + name.String()
		mux.HandleFunc("GET "+base, h.Lists.Get(name))
		mux.HandleFunc("DELETE "+base, h.Lists.Clear(name))
		mux.HandleFunc("GET "+base+"/stream", h.Lists.Stream(name))
		mux.HandleFunc("PUT "+base+"/{word}", h.Lists.Add(name))
		mux.HandleFunc("DELETE "+base+"/{word}", h.Lists.Remove(name))
	}

	return mux
}
