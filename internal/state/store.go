package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/raido/internal/apperr"
)

// SchemaVersion is baked into the storage key. Bumping it orphans older
// blobs instead of trying to migrate them; stale rows are simply ignored.
const SchemaVersion = "v2"

const stateKey = "raido.viewstate." + SchemaVersion

const schema = `
CREATE TABLE IF NOT EXISTS view_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Persisted is the preference subset that survives restarts. Field keys
// match the stored JSON; unknown keys in old blobs are ignored.
type Persisted struct {
	PageSize  int      `json:"pageSize"`
	SortBy    string   `json:"sortBy"`
	SortOrder string   `json:"sortOrder"`
	ViewMode  string   `json:"viewMode"`
	DarkMode  bool     `json:"darkMode"`
	Favorites []string `json:"favorites"`
}

// DefaultPersisted returns the preferences a fresh install starts from.
func DefaultPersisted() Persisted {
	return Persisted{
		PageSize:  DefaultPageSize,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
		ViewMode:  DefaultViewMode,
		DarkMode:  DefaultDarkMode,
		Favorites: []string{},
	}
}

// Store persists view state as a single keyed JSON blob in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path and ensures
// the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping state db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure state schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the persisted preferences. Every field is validated on its
// own: a field that is missing, mistyped, or outside its allow-list falls
// back to its default without disturbing the others. Only a blob that is
// not a JSON object at all counts as corrupt; then the row is deleted and
// defaults are returned alongside ErrStateCorrupt.
func (s *Store) Load() (Persisted, error) {
	out := DefaultPersisted()

	var raw string
	err := s.db.QueryRow(`SELECT value FROM view_state WHERE key = ?`, stateKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("load view state: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		if delErr := s.Delete(); delErr != nil {
			return out, fmt.Errorf("%w: discard failed: %v", apperr.ErrStateCorrupt, delErr)
		}
		return out, fmt.Errorf("%w: %v", apperr.ErrStateCorrupt, err)
	}

	if v, ok := decodeInt(fields, "pageSize"); ok && ValidPageSize(v) {
		out.PageSize = v
	}
	if v, ok := decodeString(fields, "sortBy"); ok && ValidSortBy(v) {
		out.SortBy = v
	}
	if v, ok := decodeString(fields, "sortOrder"); ok && ValidSortOrder(v) {
		out.SortOrder = v
	}
	if v, ok := decodeString(fields, "viewMode"); ok && ValidViewMode(v) {
		out.ViewMode = v
	}
	if v, ok := decodeBool(fields, "darkMode"); ok {
		out.DarkMode = v
	}
	out.Favorites = decodeStringList(fields, "favorites")

	return out, nil
}

// Save upserts the preferences under the versioned key.
func (s *Store) Save(p Persisted) error {
	if p.Favorites == nil {
		p.Favorites = []string{}
	}
	blob, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode view state: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO view_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		stateKey, string(blob))
	if err != nil {
		return fmt.Errorf("save view state: %w", err)
	}
	return nil
}

// Delete removes the persisted blob for the current schema version.
func (s *Store) Delete() error {
	if _, err := s.db.Exec(`DELETE FROM view_state WHERE key = ?`, stateKey); err != nil {
		return fmt.Errorf("delete view state: %w", err)
	}
	return nil
}

func decodeInt(fields map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := fields[key]
	if !ok {
		return 0, false
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

func decodeString(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}

func decodeBool(fields map[string]json.RawMessage, key string) (bool, bool) {
	raw, ok := fields[key]
	if !ok {
		return false, false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	return v, true
}

// decodeStringList keeps only the string entries of a mixed array. A
// missing or mistyped field yields an empty list.
func decodeStringList(fields map[string]json.RawMessage, key string) []string {
	out := []string{}
	raw, ok := fields[key]
	if !ok {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// ApplyPersisted overwrites the preference fields from p. The page resets
// to 1 so a restored page size cannot land past the end of the results.
func (s *ViewState) ApplyPersisted(p Persisted) {
	s.PageSize = p.PageSize
	s.SortBy = p.SortBy
	s.SortOrder = p.SortOrder
	s.ViewMode = p.ViewMode
	s.DarkMode = p.DarkMode
	s.Favorites = append([]string(nil), p.Favorites...)
	s.CurrentPage = 1
}

// Persisted extracts the preference subset for saving.
func (s *ViewState) Persisted() Persisted {
	return Persisted{
		PageSize:  s.PageSize,
		SortBy:    s.SortBy,
		SortOrder: s.SortOrder,
		ViewMode:  s.ViewMode,
		DarkMode:  s.DarkMode,
		Favorites: append([]string{}, s.Favorites...),
	}
}
