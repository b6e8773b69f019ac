// Package testutil provides shared test helpers for setting up catalogs and state stores.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/state"
)

// FixtureDoc is a small but representative source document: mixed
// severities and types, scalar and list authors, and one oddball
// severity that normalizes to unknown.
const FixtureDoc = `{
	"total": 3,
	"results": [
		{"id": "apache-rce", "name": "Apache Struts RCE", "severity": "Critical", "type": "http", "author": "alice", "tags": ["rce", "apache"], "ref": "pd:scan-templates", "uri": "http/cves/apache.yaml", "updated_at": "2024-01-10T00:00:00Z"},
		{"id": "nginx-leak", "name": "Nginx Info Leak", "severity": "low", "type": "http", "author": ["bob", "alice"], "tags": ["nginx"], "updated_at": "2024-05-01T00:00:00Z"},
		{"id": "dns-probe", "name": "DNS Probe", "severity": "weird", "type": "DNS", "author": "carol", "updated_at": "2024-03-01T00:00:00Z"}
	]
}`

// TestStore creates a temporary view-state database that is automatically cleaned up.
func TestStore(t *testing.T) *state.Store {
	t.Helper()
	s, err := state.Open(filepath.Join(t.TempDir(), "raido-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestCatalog parses and builds a catalog from the fixture document.
func TestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	raws, err := catalog.ParseDocument([]byte(FixtureDoc))
	if err != nil {
		t.Fatal(err)
	}
	return catalog.Build(raws, "")
}

// TestSourceFile writes doc to a temp file and returns a Source over it.
func TestSourceFile(t *testing.T, doc string) *catalog.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := catalog.NewSource(path)
	if err != nil {
		t.Fatal(err)
	}
	return src
}
