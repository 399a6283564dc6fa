package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alexheretic/cargo-ab-lint/internal/manifest"
)

// ManifestName is the file name of a Cargo manifest.
const ManifestName = "Cargo.toml"

// Context holds the resolved workspace root and its members.
type Context struct {
	Root         string
	ManifestPath string
	Manifest     *manifest.Manifest
	// Members lists member manifest paths in workspace order. A root that
	// is also a package comes first.
	Members []string
}

// FindRoot walks up from start, a directory or a Cargo.toml path, to the
// nearest manifest with a [workspace] table. Without one the nearest
// manifest is its own root.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	if filepath.Base(dir) == ManifestName {
		dir = filepath.Dir(dir)
	}

	nearest := ""
	for d := dir; ; d = filepath.Dir(d) {
		path := filepath.Join(d, ManifestName)
		if _, err := os.Stat(path); err == nil {
			if nearest == "" {
				nearest = d
			}
			m, err := manifest.Load(path)
			if err != nil {
				return "", err
			}
			if m.Workspace != nil {
				return d, nil
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", path, err)
		}
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	if nearest == "" {
		return "", fmt.Errorf("could not find %s in %s or any parent directory", ManifestName, dir)
	}
	return nearest, nil
}

// Load reads the root manifest in root and discovers the members.
func Load(root string) (*Context, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	manifestPath := filepath.Join(root, ManifestName)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	members, err := Discover(root, m)
	if err != nil {
		return nil, err
	}
	slog.Debug("discovered workspace", "root", root, "members", len(members))
	return &Context{Root: root, ManifestPath: manifestPath, Manifest: m, Members: members}, nil
}

// Discover expands the workspace.members globs of the root manifest m,
// dropping workspace.exclude paths and directories without a Cargo.toml.
func Discover(root string, m *manifest.Manifest) ([]string, error) {
	var members []string
	add := func(path string) {
		if !slices.Contains(members, path) {
			members = append(members, path)
		}
	}
	if m.Package != nil {
		add(filepath.Join(root, ManifestName))
	}
	if m.Workspace == nil {
		return members, nil
	}

	for _, pattern := range m.Workspace.Members {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("workspace member %q: %w", pattern, err)
		}
		slices.Sort(matches)
		if len(matches) == 0 && !isGlob(pattern) {
			return nil, fmt.Errorf("workspace member %q: no such directory", pattern)
		}
		for _, dir := range matches {
			if excluded(root, dir, m.Workspace.Exclude) {
				slog.Debug("excluded workspace member", "dir", dir)
				continue
			}
			if info, err := os.Stat(dir); err == nil && !info.IsDir() {
				continue
			}
			path := filepath.Join(dir, ManifestName)
			if _, err := os.Stat(path); err != nil {
				if isGlob(pattern) && errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("workspace member %q: %w", pattern, err)
			}
			add(path)
		}
	}
	return members, nil
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// excluded reports whether dir is one of the exclude paths or below one.
func excluded(root, dir string, exclude []string) bool {
	for _, e := range exclude {
		rel, err := filepath.Rel(filepath.Join(root, filepath.FromSlash(e)), dir)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
