package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/raido/internal/checksum"
)

// Source reads the catalog document from a file on disk.
type Source struct {
	path string // absolute path to the document
}

// NewSource resolves the document path. The file must exist and be regular.
func NewSource(path string) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: resolve source: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("catalog: stat source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("catalog: source is a directory: %s", abs)
	}
	return &Source{path: abs}, nil
}

// Path returns the absolute document path.
func (s *Source) Path() string { return s.path }

// Load reads the document and returns its bytes and checksum.
func (s *Source) Load() ([]byte, string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, "", fmt.Errorf("catalog: read source: %w", err)
	}
	return data, checksum.Sum(data), nil
}
