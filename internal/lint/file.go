package lint

import (
	"fmt"
	"os"

	"github.com/alexheretic/cargo-ab-lint/internal/manifest"
	"github.com/alexheretic/cargo-ab-lint/internal/tomledit"
)

// File is a manifest loaded both semantically and as an editable document.
type File struct {
	Path     string
	Original string
	Manifest *manifest.Manifest
	Doc      *tomledit.Document
}

// LoadFile reads path and parses it twice: once into the manifest model and
// once into a format-preserving document.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from workspace discovery
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseFile(path, data)
}

// ParseFile parses manifest content read from path.
func ParseFile(path string, data []byte) (*File, error) {
	m, err := manifest.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	doc, err := tomledit.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &File{Path: path, Original: string(data), Manifest: m, Doc: doc}, nil
}

// Changed reports whether the document differs from what was read.
func (f *File) Changed() bool {
	return f.Doc.String() != f.Original
}

func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}
