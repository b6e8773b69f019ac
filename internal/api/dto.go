package api

import (
	"github.com/starford/raido/internal/catalogservice"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/query"
	"github.com/starford/raido/internal/state"
)

// TemplateDetail is the full template response type (aliased from the domain layer).
type TemplateDetail = models.Template

// TemplateListResponse is one page of query results (aliased from the domain layer).
type TemplateListResponse = query.Result

// SearchHit is a ranked search result (aliased from the domain layer).
type SearchHit = catalogservice.SearchHit

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchHit `json:"results" validate:"required"`
}

// FavoriteToggleResponse is returned after a favorite toggle.
type FavoriteToggleResponse struct {
	ID        string   `json:"id" example:"apache-struts-rce" validate:"required"`
	Favorited bool     `json:"favorited" example:"true" validate:"required"`
	Favorites []string `json:"favorites" validate:"required"`
}

// StateResponse is the persisted preference subset (aliased from the domain layer).
type StateResponse = state.Persisted

// ExportResponse wraps the export records.
type ExportResponse struct {
	Templates []models.ExportRecord `json:"templates" validate:"required"`
	Total     int                   `json:"total" example:"42" validate:"required"`
}
