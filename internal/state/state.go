// Package state holds the user-facing view state: page, sort, view mode,
// favorites, and the persisted preference subset backed by sqlite.
package state

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/query"
)

// Allowed values for the persisted preference fields. Anything outside
// these lists is replaced with the default rather than rejected.
var (
	PageSizes  = []int{9, 16, 24, 48, 99}
	SortKeys   = []string{query.SortByCreatedAt, query.SortByUpdatedAt, query.SortByName, query.SortByID, query.SortBySeverity, query.SortByAuthor, query.SortByType}
	SortOrders = []string{query.OrderAsc, query.OrderDesc}
	ViewModes  = []string{"grid", "list", "table"}
)

const (
	DefaultPageSize  = 24
	DefaultSortBy    = query.SortByCreatedAt
	DefaultSortOrder = query.OrderDesc
	DefaultViewMode  = "grid"
	DefaultDarkMode  = true
)

// ViewState is the full in-memory browsing state. Filters and CurrentPage
// are session-scoped; the remaining fields survive restarts via Store.
type ViewState struct {
	CurrentPage int
	PageSize    int
	SortBy      string
	SortOrder   string
	ViewMode    string
	DarkMode    bool
	Filters     query.Filters
	Favorites   []string
}

// NewViewState returns the state a fresh session starts from.
func NewViewState() *ViewState {
	return &ViewState{
		CurrentPage: 1,
		PageSize:    DefaultPageSize,
		SortBy:      DefaultSortBy,
		SortOrder:   DefaultSortOrder,
		ViewMode:    DefaultViewMode,
		DarkMode:    DefaultDarkMode,
	}
}

// FavoriteSet returns the favorites as a membership set for the pipeline.
func (s *ViewState) FavoriteSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Favorites))
	for _, id := range s.Favorites {
		set[id] = struct{}{}
	}
	return set
}

// ToggleFavorite flips membership of id and reports whether it is a
// favorite afterwards. The list never holds duplicates, so toggling
// twice always restores the original state.
func (s *ViewState) ToggleFavorite(id string) bool {
	for i, fav := range s.Favorites {
		if fav == id {
			s.Favorites = append(s.Favorites[:i], s.Favorites[i+1:]...)
			return false
		}
	}
	s.Favorites = append(s.Favorites, id)
	return true
}

// ValidPageSize reports whether n is one of the allowed page sizes.
func ValidPageSize(n int) bool {
	for _, v := range PageSizes {
		if v == n {
			return true
		}
	}
	return false
}

// ValidSortBy reports whether key is a known sort key.
func ValidSortBy(key string) bool {
	return validation.Validate(key, validation.Required, validation.In(toAny(SortKeys)...)) == nil
}

// ValidSortOrder reports whether order is asc or desc.
func ValidSortOrder(order string) bool {
	return validation.Validate(order, validation.Required, validation.In(toAny(SortOrders)...)) == nil
}

// ValidViewMode reports whether mode is a known view mode.
func ValidViewMode(mode string) bool {
	return validation.Validate(mode, validation.Required, validation.In(toAny(ViewModes)...)) == nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
