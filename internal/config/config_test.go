package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexheretic/cargo-ab-lint/internal/rules"
)

func TestParse_valid(t *testing.T) {
	cfg, err := Parse([]byte(`
version: 1
disable: [redundant-default-features]
ignore_unused: [serde]
collapse_shorthand: false
`))
	require.NoError(t, err)
	assert.False(t, cfg.Enabled(rules.RedundantDefaultFeatures))
	assert.True(t, cfg.Enabled(rules.RedundantFeatures))
	assert.Equal(t, []string{"serde"}, cfg.IgnoreUnused)
	assert.False(t, cfg.Collapse())
}

func TestParse_defaults(t *testing.T) {
	cfg, err := Parse([]byte("version: 1\n"))
	require.NoError(t, err)
	for _, id := range rules.All {
		assert.True(t, cfg.Enabled(id), id)
	}
	assert.True(t, cfg.Collapse())
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad version", "version: 2\n"},
		{"unknown rule", "version: 1\ndisable: [nope]\n"},
		{"empty ignore", "version: 1\nignore_unused: [\"\"]\n"},
		{"invalid yaml", ":::invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromRoot(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("version: 1\nignore_unused: [log]\n"), 0600))
	cfg, err = LoadFromRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"log"}, cfg.IgnoreUnused)
}

func TestLoad_missingRequired(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	assert.Error(t, err)
}
