package catalog

import (
	"math"
	"sort"

	"github.com/starford/raido/internal/models"
)

// AuthorCount is one entry of the top-authors leaderboard.
type AuthorCount struct {
	Author string `json:"author"`
	Count  int    `json:"count"`
}

// Stats aggregates catalog-wide counts for the stats endpoint.
type Stats struct {
	Total           int                `json:"total"`
	Severity        map[string]int     `json:"severity"`
	SeverityPercent map[string]float64 `json:"severity_percent"`
	TopAuthors      []AuthorCount      `json:"top_authors"`
}

// topAuthorLimit bounds the leaderboard length.
const topAuthorLimit = 10

// Stats computes severity counts, per-severity percentages (one decimal),
// and the most prolific authors.
func (c *Catalog) Stats() Stats {
	s := Stats{
		Total:           len(c.templates),
		Severity:        make(map[string]int, len(models.Severities)),
		SeverityPercent: make(map[string]float64, len(models.Severities)),
	}
	for _, sev := range models.Severities {
		s.Severity[sev] = 0
	}

	authorCounts := make(map[string]int)
	for _, t := range c.templates {
		s.Severity[t.Severity]++
		for _, a := range t.Author {
			authorCounts[a]++
		}
	}

	for sev, n := range s.Severity {
		if s.Total > 0 {
			s.SeverityPercent[sev] = math.Round(float64(n)/float64(s.Total)*1000) / 10
		} else {
			s.SeverityPercent[sev] = 0
		}
	}

	top := make([]AuthorCount, 0, len(authorCounts))
	for a, n := range authorCounts {
		top = append(top, AuthorCount{Author: a, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Author < top[j].Author
	})
	if len(top) > topAuthorLimit {
		top = top[:topAuthorLimit]
	}
	s.TopAuthors = top
	return s
}
