package query

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/raido/internal/models"
)

// Sort fields and orders accepted by Sort.
const (
	SortByUpdatedAt = "updated_at"
	SortByCreatedAt = "created_at"
	SortBySeverity  = "severity"
	SortByName      = "name"
	SortByID        = "id"
	SortByAuthor    = "author"
	SortByType      = "type"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Sort orders templates in place by the given key. The sort is stable and
// has no secondary key: templates with equal keys keep their incoming
// relative order. Descending negates the key comparison rather than
// reversing the output, so equal-key pairs hold the same relative order in
// both directions.
func Sort(templates []models.Template, sortBy, order string) {
	// A collator buffers internally and is not safe for concurrent use, so
	// each sort gets its own.
	col := collate.New(language.Und, collate.IgnoreCase)

	cmp := func(a, b models.Template) int {
		switch sortBy {
		case SortByName:
			return col.CompareString(a.Name, b.Name)
		case SortByID:
			return col.CompareString(a.ID, b.ID)
		case SortByType:
			return col.CompareString(a.Type, b.Type)
		case SortByAuthor:
			return col.CompareString(firstAuthor(a), firstAuthor(b))
		case SortBySeverity:
			return models.SeverityRank[a.Severity] - models.SeverityRank[b.Severity]
		case SortByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		default: // updated_at
			return a.UpdatedAt.Compare(b.UpdatedAt)
		}
	}

	desc := order == OrderDesc
	sort.SliceStable(templates, func(i, j int) bool {
		c := cmp(templates[i], templates[j])
		if desc {
			c = -c
		}
		return c < 0
	})
}

// firstAuthor is the sort key for the author dimension: only the first
// entry counts, and an empty author list sorts first.
func firstAuthor(t models.Template) string {
	if len(t.Author) == 0 {
		return ""
	}
	return t.Author[0]
}
