package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/catalogservice"
	"github.com/starford/raido/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *catalogservice.Service, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog reads.
	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/{id}", h.GetTemplate)
	r.Get("/search", h.Search)
	r.Get("/stats", h.Stats)
	r.Get("/filters", h.Filters)
	r.Get("/export", h.Export)

	// View state.
	r.Post("/favorites/{id}", h.ToggleFavorite)
	r.Get("/state", h.GetState)
	r.Put("/state", h.UpdateState)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
