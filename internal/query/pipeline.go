package query

import (
	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/search"
)

// Pipeline composes search, filter, sort, and pagination over one
// immutable catalog/index pair. It holds no mutable state of its own; the
// caller passes the view parameters per query.
type Pipeline struct {
	catalog *catalog.Catalog
	index   *search.Index
}

// New builds a pipeline over the given catalog and its index.
func New(c *catalog.Catalog, ix *search.Index) *Pipeline {
	return &Pipeline{catalog: c, index: ix}
}

// Result is one page of query output.
type Result struct {
	Templates  []models.Template `json:"templates"`
	Total      int               `json:"total"` // filtered count before pagination
	Page       int               `json:"page"`  // effective page after clamping
	TotalPages int               `json:"total_pages"`
	Filtered   bool              `json:"filtered"` // any query or filter narrowed the catalog
}

// Run executes the full pipeline and returns one page.
func (p *Pipeline) Run(f Filters, favorites map[string]struct{}, sortBy, order string, page, pageSize int) Result {
	filtered := p.Filtered(f, favorites, sortBy, order)
	slice, effectivePage, totalPages := Paginate(filtered, page, pageSize)
	return Result{
		Templates:  slice,
		Total:      len(filtered),
		Page:       effectivePage,
		TotalPages: totalPages,
		Filtered:   f.Query != "" || f.Active(),
	}
}

// Filtered returns the filtered and sorted pre-pagination set. This is the
// export surface as well as Run's first half.
func (p *Pipeline) Filtered(f Filters, favorites map[string]struct{}, sortBy, order string) []models.Template {
	candidates := p.candidates(f.Query)
	filtered := Apply(candidates, f, favorites)
	Sort(filtered, sortBy, order)
	return filtered
}

// candidates seeds the pipeline: the index's ranked results when a
// free-text query is active (score order preserved into filtering),
// otherwise the whole catalog in document order.
func (p *Pipeline) candidates(queryText string) []models.Template {
	all := p.catalog.Templates()
	if queryText == "" {
		out := make([]models.Template, len(all))
		copy(out, all)
		return out
	}
	hits := p.index.Query(queryText)
	out := make([]models.Template, len(hits))
	for i, h := range hits {
		out[i] = all[h.Index]
	}
	return out
}
