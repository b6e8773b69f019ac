package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/catalogservice"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/query"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/state"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *catalogservice.Service
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil when SSE is disabled.
func NewHandler(svc *catalogservice.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

// listParams parses the shared template-query parameters. It returns a
// client error message for values that cannot be coerced; filter values
// that merely match nothing (an unknown severity, say) pass through and
// yield an empty result instead.
func listParams(r *http.Request) (catalogservice.ListParams, string) {
	q := r.URL.Query()
	p := catalogservice.ListParams{}

	p.Filters.Query = q.Get("q")
	p.Filters.Type = strings.ToLower(q.Get("type"))
	// Authors are only trimmed during normalization, so the filter value
	// must keep its case to match what /filters advertises.
	p.Filters.Author = q.Get("author")

	if sevs := csvValues(q["severity"]); len(sevs) > 0 {
		p.Filters.Severity = make(map[string]struct{}, len(sevs))
		for _, s := range sevs {
			p.Filters.Severity[strings.ToLower(s)] = struct{}{}
		}
	}
	for _, tag := range csvValues(q["tags"]) {
		p.Filters.Tags = append(p.Filters.Tags, strings.ToLower(tag))
	}

	var msg string
	parseTri := func(name string) query.TriState {
		switch q.Get(name) {
		case "":
			return query.Any
		case "true":
			return query.Require
		case "false":
			return query.Exclude
		default:
			msg = "parameter '" + name + "' must be true or false"
			return query.Any
		}
	}
	p.Filters.Draft = parseTri("draft")
	p.Filters.Early = parseTri("early")
	p.Filters.New = parseTri("new")
	if msg != "" {
		return p, msg
	}

	p.Filters.FavoritesOnly = q.Get("favorites") == "true"

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, "parameter 'page' must be an integer"
		}
		if n < 1 {
			n = 1
		}
		p.Page = n
	}
	if raw := q.Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !state.ValidPageSize(n) {
			return p, "parameter 'per_page' must be one of the allowed page sizes"
		}
		p.PageSize = n
	}
	if raw := q.Get("sort"); raw != "" {
		if !state.ValidSortBy(raw) {
			return p, "unknown sort key"
		}
		p.SortBy = raw
	}
	if raw := q.Get("order"); raw != "" {
		if !state.ValidSortOrder(raw) {
			return p, "parameter 'order' must be asc or desc"
		}
		p.Order = raw
	}
	return p, ""
}

// csvValues flattens repeated query params and comma-separated lists into
// one slice, dropping empties.
func csvValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ListTemplates handles GET /api/templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	p, msg := listParams(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody(msg))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.List(p))
}

// GetTemplate handles GET /api/templates/{id}.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := h.svc.Get(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get template failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, map[string]any{
		"results": h.svc.Search(q, limit),
	})
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

// Filters handles GET /api/filters: the distinct values filter UIs can
// offer for the type, author, and tag dimensions.
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	types, authors, tags := h.svc.Vocabularies()
	writeJSON(w, http.StatusOK, map[string]any{
		"types":      types,
		"authors":    authors,
		"tags":       tags,
		"severities": models.Severities,
	})
}

// Export handles GET /api/export. It honors the same filter and sort
// parameters as the listing but never paginates.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	p, msg := listParams(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody(msg))
		return
	}
	recs := h.svc.Export(p)
	writeJSON(w, http.StatusOK, map[string]any{
		"templates": recs,
		"total":     len(recs),
	})
}

// ToggleFavorite handles POST /api/favorites/{id}.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	favorited, err := h.svc.ToggleFavorite(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		// The toggle took effect in memory; report it but flag persistence.
		slog.Warn("favorite persisted lazily", slog.String("id", id), slog.String("error", err.Error()))
	}
	if h.broker != nil {
		h.broker.PublishFavoritesChanged(id, favorited)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        id,
		"favorited": favorited,
		"favorites": h.svc.GetState().Favorites,
	})
}

// GetState handles GET /api/state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.GetState())
}

// UpdateState handles PUT /api/state.
func (h *Handler) UpdateState(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	req := h.svc.GetState()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.UpdateState(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if h.broker != nil {
		h.broker.PublishStateChanged()
	}
	writeJSON(w, http.StatusOK, h.svc.GetState())
}
