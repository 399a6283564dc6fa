package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteWorkspace writes files (relative path to content) into a temp
// directory and returns its path.
func WriteWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		WriteFile(t, filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	return dir
}

// ReadFile returns the content of dir/rel.
func ReadFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel))) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Package returns a minimal member manifest named name followed by body.
func Package(name, body string) string {
	return "[package]\nname = \"" + name + "\"\nversion = \"0.1.0\"\n\n" + body
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec // test dir
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
}
