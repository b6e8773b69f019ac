// Package catalog loads the source document and holds the immutable
// normalized catalog of templates.
package catalog

import (
	"sort"
	"strings"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/normalize"
)

// Catalog is the canonical template set for one load of the source
// document. It is built once and never mutated; queries only select and
// order its entries.
type Catalog struct {
	templates []models.Template
	byID      map[string]int
	types     []string
	authors   []string
	tags      []string
}

// Build normalizes the raw records into a catalog. baseURL overrides the
// default origin URL prefix when non-empty.
func Build(raws []models.RawRecord, baseURL string) *Catalog {
	c := &Catalog{
		templates: make([]models.Template, len(raws)),
		byID:      make(map[string]int, len(raws)),
	}
	for i, raw := range raws {
		t := normalize.Record(raw, i, baseURL)
		c.templates[i] = t
		if _, dup := c.byID[t.ID]; !dup {
			c.byID[t.ID] = i
		}
	}
	c.buildVocabularies()
	return c
}

// Templates returns the catalog in document order. Callers must not mutate
// the returned slice.
func (c *Catalog) Templates() []models.Template {
	return c.templates
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Get looks a template up by id.
func (c *Catalog) Get(id string) (models.Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Template{}, false
	}
	return c.templates[i], true
}

// Types returns the distinct template types, sorted.
func (c *Catalog) Types() []string { return c.types }

// Authors returns the distinct authors, sorted case-insensitively.
func (c *Catalog) Authors() []string { return c.authors }

// Tags returns the distinct tags, sorted.
func (c *Catalog) Tags() []string { return c.tags }

func (c *Catalog) buildVocabularies() {
	types := make(map[string]struct{})
	authors := make(map[string]struct{})
	tags := make(map[string]struct{})
	for _, t := range c.templates {
		types[t.Type] = struct{}{}
		for _, a := range t.Author {
			authors[a] = struct{}{}
		}
		for _, tag := range t.Tags {
			tags[tag] = struct{}{}
		}
	}
	c.types = sortedKeys(types, false)
	c.authors = sortedKeys(authors, true)
	c.tags = sortedKeys(tags, false)
}

func sortedKeys(set map[string]struct{}, foldCase bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if foldCase {
			return strings.ToLower(out[i]) < strings.ToLower(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
