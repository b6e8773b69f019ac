// Package apperr defines the sentinel errors shared across layers.
package apperr

import "errors"

var (
	// ErrDataFormat means the source document is not an object with a
	// 'results' array. Fatal at startup.
	ErrDataFormat = errors.New("source document must be an object with a 'results' array")

	// ErrEmptyCatalog means the document parsed but carries no templates.
	// Fatal at startup, reported distinctly from a malformed document.
	ErrEmptyCatalog = errors.New("catalog contains no templates")

	// ErrNotFound is returned when a template id is not in the catalog.
	ErrNotFound = errors.New("not found")

	// ErrStateCorrupt marks a persisted view-state blob that could not be
	// parsed at all. Recovered locally: the entry is deleted and every
	// field falls back to its default.
	ErrStateCorrupt = errors.New("persisted state corrupt")
)
