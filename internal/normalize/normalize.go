// Package normalize converts loosely typed raw records into canonical
// templates. Every function here is total: missing or malformed input
// resolves to a documented default, never an error.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

// DefaultBaseURL prefixes derived origin paths.
const DefaultBaseURL = "https://github.com/"

// Epoch is the sentinel instant for missing or unparseable timestamps.
var Epoch = time.Unix(0, 0).UTC()

// Record normalizes one raw record into a canonical template. index is the
// record's position in the source document and seeds the placeholder id.
// baseURL overrides DefaultBaseURL when non-empty.
func Record(raw models.RawRecord, index int, baseURL string) models.Template {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	t := models.Template{
		ID:          stringOr(raw.ID, "template-"+strconv.Itoa(index)),
		Name:        stringOr(raw.Name, "Unnamed Template"),
		Description: stringOr(raw.Description, ""),
		Severity:    strings.ToLower(stringOr(raw.Severity, models.SeverityUnknown)),
		Ref:         strings.ToLower(stringOr(raw.Ref, "unknown")),
		Author:      stringList(raw.Author, strings.TrimSpace),
		Tags: stringList(raw.Tags, func(s string) string {
			return strings.ToLower(strings.TrimSpace(s))
		}),
		References:     stringList(raw.References, strings.TrimSpace),
		Classification: mapOr(raw.Classification),
		Metadata:       mapOr(raw.Metadata),
		RawContent:     stringOr(raw.Raw, ""),
		Type:           strings.ToLower(stringOr(raw.Type, "unknown")),
		IsDraft:        truthy(raw.IsDraft),
		IsEarly:        truthy(raw.IsEarly),
		IsNew:          truthy(raw.IsNew),
		IsPDResearch:   truthy(raw.IsPDResearch),
		IsPDTeam:       truthy(raw.IsPDTeam),
		IsGitHub:       truthy(raw.IsGitHub),
		IsPDTemplate:   truthy(raw.IsPDTemplate),
		CreatedAt:      parseInstant(raw.CreatedAt),
		UpdatedAt:      parseInstant(raw.UpdatedAt),
	}

	if _, ok := models.SeverityRank[t.Severity]; !ok {
		t.Severity = models.SeverityUnknown
	}

	// updated_at never precedes created_at.
	if t.UpdatedAt.Before(t.CreatedAt) {
		t.UpdatedAt = t.CreatedAt
	}

	// The origin URL exists only when both the ref and the in-repo path do.
	ref := strings.TrimSpace(asString(raw.Ref))
	uri := strings.TrimSpace(asString(raw.URI))
	if ref != "" && uri != "" {
		p := baseURL + strings.Replace(ref, ":", "/blob/", 1) + "/" + uri
		t.Path = &p
	}

	t.StatusFlags = statusFlags(t)
	return t
}

// statusFlags derives the ordered flag list from the seven booleans. The
// order is fixed by models.StatusFlagOrder regardless of input order.
func statusFlags(t models.Template) []string {
	set := map[string]bool{
		"draft":      t.IsDraft,
		"early":      t.IsEarly,
		"new":        t.IsNew,
		"github":     t.IsGitHub,
		"pdteam":     t.IsPDTeam,
		"pdresearch": t.IsPDResearch,
		"pdtemplate": t.IsPDTemplate,
	}
	out := make([]string, 0, len(models.StatusFlagOrder))
	for _, flag := range models.StatusFlagOrder {
		if set[flag] {
			out = append(out, flag)
		}
	}
	return out
}

// asString coerces an arbitrary JSON value to its string form. Containers
// and nil coerce to "".
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}

// stringOr returns the trimmed string form of v, or def when that is empty.
func stringOr(v any, def string) string {
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return def
	}
	return s
}

// stringList accepts a scalar or a list and normalizes to a list, applying
// transform to each element and dropping entries that end up empty.
func stringList(v any, transform func(string) string) []string {
	var items []any
	switch vv := v.(type) {
	case nil:
		return []string{}
	case []any:
		items = vv
	default:
		items = []any{vv}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := transform(asString(item))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func mapOr(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// truthy mirrors the permissive boolean coercion of the upstream feed:
// absent, false, zero, and empty-string are false, everything else true.
func truthy(v any) bool {
	switch vv := v.(type) {
	case nil:
		return false
	case bool:
		return vv
	case float64:
		return vv != 0
	case string:
		return vv != ""
	default:
		return true
	}
}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseInstant parses an ISO-8601 UTC timestamp. Missing or unparseable
// input yields the Epoch sentinel, never an error.
func parseInstant(v any) time.Time {
	s := strings.TrimSpace(asString(v))
	if s == "" {
		return Epoch
	}
	for _, layout := range instantLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts.UTC()
		}
	}
	return Epoch
}
