package query

import "github.com/starford/raido/internal/models"

// Paginate slices one page out of an ordered list. Pages are 1-indexed; a
// page beyond the end clamps down to the last page, and requesting a page
// below 1 is a caller error (handlers coerce before calling). Returns the
// page slice, the effective page after clamping, and the total page count
// (at least 1, even for an empty list).
func Paginate(templates []models.Template, page, pageSize int) ([]models.Template, int, int) {
	count := len(templates)

	totalPages := (count + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > count {
		end = count
	}
	if start > count {
		start = count
	}
	return templates[start:end], page, totalPages
}
