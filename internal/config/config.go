// Package config loads the optional .cargo-ab-lint.yaml file that tunes
// which rules run and how fixes are written.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/alexheretic/cargo-ab-lint/internal/rules"
)

// FileName is looked up in the workspace root.
const FileName = ".cargo-ab-lint.yaml"

// Config represents .cargo-ab-lint.yaml.
type Config struct {
	Version int `yaml:"version"`
	// Disable lists rule ids that are not reported or fixed.
	Disable []string `yaml:"disable,omitempty"`
	// IgnoreUnused lists shared dependencies that may stay unused.
	IgnoreUnused []string `yaml:"ignore_unused,omitempty"`
	// CollapseShorthand rewrites `{ workspace = true }` left behind by a
	// fix into `name.workspace = true`. Defaults to true.
	CollapseShorthand *bool `yaml:"collapse_shorthand,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{Version: 1}
}

// Enabled reports whether the rule is enabled.
func (c *Config) Enabled(id rules.RuleID) bool {
	return !slices.Contains(c.Disable, string(id))
}

// Collapse reports whether fixed entries are rewritten to dotted form.
func (c *Config) Collapse() bool {
	return c.CollapseShorthand == nil || *c.CollapseShorthand
}

// Load reads path. When optional is set a missing file yields Default.
func Load(path string, optional bool) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user supplied config path
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromRoot loads FileName from the workspace root if present.
func LoadFromRoot(root string) (*Config, error) {
	return Load(filepath.Join(root, FileName), true)
}

// Parse parses and validates config content.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", cfg.Version)
	}
	for i, id := range cfg.Disable {
		if _, err := rules.ParseRuleID(id); err != nil {
			return fmt.Errorf("config: disable[%d]: %w", i, err)
		}
	}
	for i, name := range cfg.IgnoreUnused {
		if name == "" {
			return fmt.Errorf("config: ignore_unused[%d] is empty", i)
		}
	}
	return nil
}
