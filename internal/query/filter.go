// Package query implements the filter → sort → paginate pipeline the
// catalog is browsed through. All functions here are pure: they select and
// order templates but never mutate them.
package query

import "github.com/starford/raido/internal/models"

// TriState is a three-valued filter dimension over one status boolean:
// ignore it, require it true, or require it false.
type TriState int

const (
	Any TriState = iota
	Require
	Exclude
)

// Allows reports whether a template's flag value satisfies the constraint.
func (t TriState) Allows(v bool) bool {
	switch t {
	case Require:
		return v
	case Exclude:
		return !v
	default:
		return true
	}
}

// Filters is the active filter set of one query.
type Filters struct {
	Query         string
	Severity      map[string]struct{} // OR across members; empty imposes nothing
	Type          string
	Author        string
	Tags          []string // AND: template tags must be a superset
	Draft         TriState
	Early         TriState
	New           TriState
	FavoritesOnly bool
}

// Active reports whether any dimension beyond the free-text query is set.
func (f Filters) Active() bool {
	return len(f.Severity) > 0 || f.Type != "" || f.Author != "" ||
		len(f.Tags) > 0 || f.Draft != Any || f.Early != Any || f.New != Any ||
		f.FavoritesOnly
}

// Apply narrows candidates to the templates satisfying every active
// constraint, preserving input order. The free-text stage is the caller's
// concern (the pipeline feeds search results in as candidates).
func Apply(candidates []models.Template, f Filters, favorites map[string]struct{}) []models.Template {
	out := make([]models.Template, 0, len(candidates))
	for _, t := range candidates {
		if matches(t, f, favorites) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t models.Template, f Filters, favorites map[string]struct{}) bool {
	if len(f.Severity) > 0 {
		if _, ok := f.Severity[t.Severity]; !ok {
			return false
		}
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Author != "" && !contains(t.Author, f.Author) {
		return false
	}
	for _, tag := range f.Tags {
		if !contains(t.Tags, tag) {
			return false
		}
	}
	if !f.Draft.Allows(t.IsDraft) || !f.Early.Allows(t.IsEarly) || !f.New.Allows(t.IsNew) {
		return false
	}
	if f.FavoritesOnly {
		if _, ok := favorites[t.ID]; !ok {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
