// Package search implements the weighted fuzzy full-text index over the
// catalog. The index is built once per catalog load and is immutable; it
// knows nothing about favorites or view state.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/starford/raido/internal/models"
)

// minQueryLen guards against noise: shorter queries match nothing.
const minQueryLen = 3

// Field weights. A field's score is divided by its weight, so heavier
// fields produce better (lower) combined scores for the same match quality.
const (
	weightName        = 2.0
	weightDescription = 1.0
	weightID          = 0.9
	weightPath        = 0.5
	weightTag         = 0.4
	weightAuthor      = 0.2
	weightRawContent  = 0.1
)

type field struct {
	text   []rune // lower-cased
	weight float64
}

// Index holds the searchable fields of every template, parallel to catalog
// order.
type Index struct {
	docs [][]field
}

// Hit is one ranked result: the template's catalog position and its
// combined score (lower is better).
type Hit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Build constructs the index from the catalog's templates.
func Build(templates []models.Template) *Index {
	ix := &Index{docs: make([][]field, len(templates))}
	for i, t := range templates {
		fields := make([]field, 0, 6+len(t.Tags)+len(t.Author))
		fields = appendField(fields, t.Name, weightName)
		fields = appendField(fields, t.Description, weightDescription)
		fields = appendField(fields, t.ID, weightID)
		if t.Path != nil {
			fields = appendField(fields, *t.Path, weightPath)
		}
		for _, tag := range t.Tags {
			fields = appendField(fields, tag, weightTag)
		}
		for _, a := range t.Author {
			fields = appendField(fields, a, weightAuthor)
		}
		fields = appendField(fields, t.RawContent, weightRawContent)
		ix.docs[i] = fields
	}
	return ix
}

func appendField(fields []field, text string, weight float64) []field {
	if text == "" {
		return fields
	}
	return append(fields, field{text: []rune(strings.ToLower(text)), weight: weight})
}

// Query returns every template with at least one field clearing the match
// threshold, ordered by ascending combined score, ties in catalog order.
// Queries shorter than three characters return nothing.
func (ix *Index) Query(text string) []Hit {
	q := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(q) < minQueryLen {
		return nil
	}
	pattern := []rune(q)

	var hits []Hit
	for i, fields := range ix.docs {
		best := -1.0
		for _, f := range fields {
			raw, ok := bitapScore(pattern, f.text)
			if !ok {
				continue
			}
			adjusted := raw / f.weight
			if best < 0 || adjusted < best {
				best = adjusted
			}
		}
		if best >= 0 {
			hits = append(hits, Hit{Index: i, Score: best})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score < hits[b].Score
	})
	return hits
}
