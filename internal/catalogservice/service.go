// Package catalogservice coordinates the catalog, search index, query
// pipeline, and persisted view state behind one concurrency-safe facade.
package catalogservice

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/query"
	"github.com/starford/raido/internal/search"
	"github.com/starford/raido/internal/state"
)

// Service owns the live catalog and its derived index. Reload swaps both
// under the write lock; queries share the read lock.
type Service struct {
	mu       sync.RWMutex
	catalog  *catalog.Catalog
	index    *search.Index
	pipeline *query.Pipeline
	view     *state.ViewState

	store   *state.Store
	src     *catalog.Source
	baseURL string
	logger  *slog.Logger
}

// New builds the service around an already-loaded catalog. store may be
// nil when persistence is disabled; baseURL is reused on reloads.
func New(c *catalog.Catalog, store *state.Store, src *catalog.Source, baseURL string, logger *slog.Logger) *Service {
	ix := search.Build(c.Templates())
	view := state.NewViewState()
	if store != nil {
		persisted, err := store.Load()
		if err != nil {
			logger.Warn("persisted state unusable, starting from defaults", slog.Any("error", err))
		}
		view.ApplyPersisted(persisted)
	}
	return &Service{
		catalog:  c,
		index:    ix,
		pipeline: query.New(c, ix),
		view:     view,
		store:    store,
		src:      src,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// ListParams carries one query's worth of request-scoped parameters.
// Zero values fall back to the persisted preferences.
type ListParams struct {
	Filters  query.Filters
	SortBy   string
	Order    string
	Page     int
	PageSize int
}

// List runs the full pipeline and returns one page of templates.
func (s *Service) List(p ListParams) query.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sortBy, order, page, pageSize := s.effective(p)
	return s.pipeline.Run(p.Filters, s.view.FavoriteSet(), sortBy, order, page, pageSize)
}

// Get returns a single template by id.
func (s *Service) Get(id string) (models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.catalog.Get(id)
	if !ok {
		return models.Template{}, fmt.Errorf("template %q: %w", id, apperr.ErrNotFound)
	}
	return t, nil
}

// SearchHit pairs a template with its match score (lower is better).
type SearchHit struct {
	Template models.Template `json:"template"`
	Score    float64         `json:"score"`
}

// Search returns the ranked index hits for a free-text query without
// filtering or pagination. limit <= 0 means unlimited.
func (s *Service) Search(text string, limit int) []SearchHit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hits := s.index.Query(text)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	all := s.catalog.Templates()
	out := make([]SearchHit, len(hits))
	for i, h := range hits {
		out[i] = SearchHit{Template: all[h.Index], Score: h.Score}
	}
	return out
}

// Stats summarizes the current catalog.
func (s *Service) Stats() catalog.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Stats()
}

// Vocabularies returns the distinct types, authors, and tags for filter UIs.
func (s *Service) Vocabularies() (types, authors, tags []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Types(), s.catalog.Authors(), s.catalog.Tags()
}

// Export returns the filtered result set stripped of browsing metadata,
// honoring the same filters and sort as List but without pagination.
func (s *Service) Export(p ListParams) []models.ExportRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sortBy, order, _, _ := s.effective(p)
	filtered := s.pipeline.Filtered(p.Filters, s.view.FavoriteSet(), sortBy, order)
	out := make([]models.ExportRecord, len(filtered))
	for i, t := range filtered {
		out[i] = t.Export()
	}
	return out
}

// ToggleFavorite flips membership of id and reports the new state. The
// in-memory toggle sticks even when persisting it fails; the failure is
// logged and surfaced to the caller.
func (s *Service) ToggleFavorite(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.catalog.Get(id); !ok {
		return false, fmt.Errorf("template %q: %w", id, apperr.ErrNotFound)
	}
	favorited := s.view.ToggleFavorite(id)
	if err := s.persistLocked(); err != nil {
		s.logger.Warn("favorite toggled in memory only", slog.String("id", id), slog.Any("error", err))
		return favorited, err
	}
	return favorited, nil
}

// GetState returns a snapshot of the persisted preference subset.
func (s *Service) GetState() state.Persisted {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.Persisted()
}

// UpdateState validates and applies new preferences, then persists them.
// Invalid fields are rejected rather than silently defaulted; the caller
// chose them explicitly.
func (s *Service) UpdateState(p state.Persisted) error {
	if !state.ValidPageSize(p.PageSize) {
		return fmt.Errorf("page size %d not allowed", p.PageSize)
	}
	if !state.ValidSortBy(p.SortBy) {
		return fmt.Errorf("unknown sort key %q", p.SortBy)
	}
	if !state.ValidSortOrder(p.SortOrder) {
		return fmt.Errorf("unknown sort order %q", p.SortOrder)
	}
	if !state.ValidViewMode(p.ViewMode) {
		return fmt.Errorf("unknown view mode %q", p.ViewMode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	favorites := s.view.Favorites
	s.view.ApplyPersisted(p)
	if p.Favorites == nil {
		s.view.Favorites = favorites
	}
	return s.persistLocked()
}

// Reload rebuilds the catalog and index from raw source bytes and swaps
// them in atomically. Queries in flight finish against the old catalog.
func (s *Service) Reload(data []byte) error {
	raws, err := catalog.ParseDocument(data)
	if err != nil {
		return err
	}
	c := catalog.Build(raws, s.baseURL)
	ix := search.Build(c.Templates())

	s.mu.Lock()
	s.catalog = c
	s.index = ix
	s.pipeline = query.New(c, ix)
	s.mu.Unlock()

	s.logger.Info("catalog reloaded", slog.Int("templates", c.Len()))
	return nil
}

// ReloadFromSource re-reads the source document from disk and reloads.
func (s *Service) ReloadFromSource() error {
	data, _, err := s.src.Load()
	if err != nil {
		return err
	}
	return s.Reload(data)
}

// Len returns the number of templates in the live catalog.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Len()
}

// effective resolves request parameters against persisted preferences.
func (s *Service) effective(p ListParams) (sortBy, order string, page, pageSize int) {
	sortBy, order = p.SortBy, p.Order
	page, pageSize = p.Page, p.PageSize
	if sortBy == "" {
		sortBy = s.view.SortBy
	}
	if order == "" {
		order = s.view.SortOrder
	}
	if page < 1 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = s.view.PageSize
	}
	return sortBy, order, page, pageSize
}

func (s *Service) persistLocked() error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(s.view.Persisted())
}
