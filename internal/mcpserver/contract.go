package mcpserver

// QueryContract describes how the catalog query pipeline composes, for
// LLM consumers calling list_templates and search_templates.
const QueryContract = `# Raido Query Pipeline Contract

Every catalog query runs the same four stages, in order:

` + "```" + `
search -> filter -> sort -> paginate
` + "```" + `

## 1. Search

- Fuzzy matching over name, description, id, path, tags, authors, and raw
  content, with per-field weights (name counts most, raw content least).
- Queries shorter than 3 characters match nothing.
- Hits are ranked by score; **lower scores are better matches** (0 is exact).
- When no query is given, every template is a candidate in catalog order.

## 2. Filter

All active filters must hold at once (conjunctive):

- ` + "`" + `severity` + "`" + ` is a set; a template matches if its severity is **any** member.
  Valid values: critical, high, medium, low, info, unknown.
- ` + "`" + `type` + "`" + ` is an exact match (e.g. http, dns, ssl).
- ` + "`" + `author` + "`" + ` matches templates whose author list contains the value.
- ` + "`" + `tags` + "`" + ` are conjunctive: a template must carry **all** listed tags.
- Draft / early / new flags are tri-state: absent (no constraint),
  true (require), false (exclude).

Values that match nothing yield an empty result, not an error.

## 3. Sort

- Keys: created_at (default), updated_at, name, id, severity, author, type.
- Text keys compare case-insensitively. Severity orders by rank
  (critical highest). Author uses the first listed author; templates with
  no author sort first ascending.
- The sort is stable: templates with equal keys keep their incoming order
  in **both** directions.

## 4. Paginate

- Page sizes: 9, 16, 24, 48, 99. Pages are 1-based.
- A page past the end is clamped to the last page, which is returned with
  its contents; you never get an empty page from a non-empty result set.
- Responses carry ` + "`" + `total` + "`" + ` (filtered count), ` + "`" + `page` + "`" + ` (effective, possibly
  clamped), ` + "`" + `total_pages` + "`" + `, and ` + "`" + `filtered` + "`" + ` (whether any query or filter
  narrowed the catalog).
`
