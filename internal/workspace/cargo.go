package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alexheretic/cargo-ab-lint/internal/manifest"
)

type cargoMetadata struct {
	Packages []struct {
		ID           string `json:"id"`
		ManifestPath string `json:"manifest_path"`
	} `json:"packages"`
	WorkspaceMembers []string `json:"workspace_members"`
	WorkspaceRoot    string   `json:"workspace_root"`
}

// LoadWithCargo asks `cargo metadata` for the workspace containing dir.
func LoadWithCargo(ctx context.Context, dir string) (*Context, error) {
	out, err := cargoOutput(ctx, dir, "metadata", "--format-version", "1", "--no-deps")
	if err != nil {
		return nil, err
	}
	root, members, err := parseMetadata(out)
	if err != nil {
		return nil, err
	}
	manifestPath := filepath.Join(root, ManifestName)
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	return &Context{Root: root, ManifestPath: manifestPath, Manifest: m, Members: members}, nil
}

// parseMetadata returns the workspace root and member manifest paths, the
// root package first.
func parseMetadata(data []byte) (string, []string, error) {
	var md cargoMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return "", nil, fmt.Errorf("parsing cargo metadata: %w", err)
	}
	if md.WorkspaceRoot == "" {
		return "", nil, fmt.Errorf("parsing cargo metadata: no workspace_root")
	}

	paths := make(map[string]string, len(md.Packages))
	for _, p := range md.Packages {
		paths[p.ID] = p.ManifestPath
	}
	rootManifest := filepath.Join(md.WorkspaceRoot, ManifestName)

	var members []string
	for _, id := range md.WorkspaceMembers {
		path, ok := paths[id]
		if !ok {
			dir, err := dirFromID(id)
			if err != nil {
				return "", nil, err
			}
			path = filepath.Join(dir, ManifestName)
		}
		path = filepath.Clean(path)
		if path == rootManifest {
			members = slices.Insert(members, 0, path)
		} else {
			members = append(members, path)
		}
	}
	return md.WorkspaceRoot, members, nil
}

// dirFromID extracts the package directory from a package id, either
// `path+file:///dir#name@1.0.0` or the older `name 1.0.0 (path+file:///dir)`.
func dirFromID(id string) (string, error) {
	s := id
	if i := strings.Index(s, "("); i >= 0 && strings.HasSuffix(s, ")") {
		s = s[i+1 : len(s)-1]
	}
	s, _, _ = strings.Cut(s, "#")
	s, ok := strings.CutPrefix(s, "path+")
	if !ok {
		return "", fmt.Errorf("workspace member %q is not a path package", id)
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme != "file" {
		return "", fmt.Errorf("workspace member %q: unsupported source", id)
	}
	return filepath.FromSlash(u.Path), nil
}

func cargoOutput(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "cargo", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("cargo %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
