package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// ParseDocument decodes the source document, an object with a `total`
// integer and a `results` array of raw records. A document that is not an
// object, or whose `results` is missing or not an array, fails with
// apperr.ErrDataFormat; a well-formed but empty document fails with
// apperr.ErrEmptyCatalog.
func ParseDocument(data []byte) ([]models.RawRecord, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("catalog: %w: %v", apperr.ErrDataFormat, err)
	}

	rawResults, ok := envelope["results"]
	if !ok {
		return nil, fmt.Errorf("catalog: %w", apperr.ErrDataFormat)
	}

	var results []models.RawRecord
	if err := json.Unmarshal(rawResults, &results); err != nil {
		return nil, fmt.Errorf("catalog: %w: %v", apperr.ErrDataFormat, err)
	}

	// results is authoritative: a missing or unparseable total never turns
	// a populated document into an empty-catalog failure.
	total := len(results)
	if rawTotal, ok := envelope["total"]; ok {
		var n int
		if err := json.Unmarshal(rawTotal, &n); err == nil {
			total = n
		}
	}

	if len(results) == 0 || total == 0 {
		return nil, fmt.Errorf("catalog: %w", apperr.ErrEmptyCatalog)
	}
	return results, nil
}
