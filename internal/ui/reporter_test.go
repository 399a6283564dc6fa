package ui

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexheretic/cargo-ab-lint/internal/lint"
	"github.com/alexheretic/cargo-ab-lint/internal/manifest"
	"github.com/alexheretic/cargo-ab-lint/internal/rules"
)

func plainReporter(format DiffFormat) (*Reporter, *bytes.Buffer) {
	var buf bytes.Buffer
	r := NewReporter(&buf, NewStyles(NewRenderer(&buf, ColorNever)), format)
	r.base = filepath.FromSlash("/work/ws")
	return r, &buf
}

func TestReporter_checking(t *testing.T) {
	r, buf := plainReporter(DiffLines)
	r.Checking(filepath.FromSlash("/work/ws/crates/a/Cargo.toml"), false)
	r.Checking(filepath.FromSlash("/work/ws/Cargo.toml"), true)
	r.Checking(filepath.FromSlash("/elsewhere/Cargo.toml"), false)

	want := "==> Checking " + filepath.FromSlash("crates/a/Cargo.toml") + "\n" +
		"==> Checking workspace Cargo.toml\n" +
		"==> Checking " + filepath.FromSlash("/elsewhere/Cargo.toml") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestReporter_finding(t *testing.T) {
	tests := []struct {
		finding rules.Finding
		want    string
	}{
		{
			rules.Finding{Rule: rules.RedundantFeatures, Dependency: "tokio", Kind: manifest.Dev, Features: []string{"rt", "macros"}},
			`Redundant feature(s) ["rt", "macros"] for workspace dev-dependency tokio`,
		},
		{
			rules.Finding{Rule: rules.RedundantDefaultFeatures, Dependency: "serde", Kind: manifest.Normal},
			"Redundant default-features set in workspace dependency serde",
		},
		{
			rules.Finding{Rule: rules.UnusedSharedDependency, Dependency: "bar"},
			"Unused workspace dependency bar",
		},
	}
	for _, tt := range tests {
		r, buf := plainReporter(DiffLines)
		r.Finding(tt.finding)
		assert.Equal(t, tt.want+"\n", buf.String())
		assert.Equal(t, tt.want, tt.finding.Message())
	}
}

func TestReporter_diffLines(t *testing.T) {
	r, buf := plainReporter(DiffLines)
	err := r.Diff("Cargo.toml", "[dependencies]\nfoo = { workspace = true, default-features = false }\n", "[dependencies]\nfoo.workspace = true\n")
	require.NoError(t, err)
	assert.Equal(t, "-foo = { workspace = true, default-features = false }\n+foo.workspace = true\n", buf.String())
}

func TestReporter_diffUnified(t *testing.T) {
	r, buf := plainReporter(DiffUnified)
	err := r.Diff(filepath.FromSlash("/work/ws/a/Cargo.toml"), "x\ny\n", "x\n")
	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "--- a/a/Cargo.toml\n+++ b/a/Cargo.toml\n"), out)
	assert.Contains(t, out, "@@ -1,2 +1 @@\n")
	assert.Contains(t, out, "\n-y\n")
}

func TestReporter_hintAndAllGood(t *testing.T) {
	r, buf := plainReporter(DiffLines)
	r.Hint()
	r.AllGood()
	assert.Equal(t, "Hint: To fix run with --fix\nAll good ✔\n", buf.String())
}

func TestReporter_summary(t *testing.T) {
	r, buf := plainReporter(DiffLines)
	root := filepath.FromSlash("/work/ws/Cargo.toml")
	member := filepath.FromSlash("/work/ws/a/Cargo.toml")
	r.Checking(member, false)
	r.Checking(root, true)
	buf.Reset()

	s := &lint.Summary{
		Findings: []rules.Finding{
			{Rule: rules.RedundantFeatures, Dependency: "foo", Kind: manifest.Normal, Features: []string{"a"}, Manifest: member},
			{Rule: rules.UnusedSharedDependency, Dependency: "bar", Manifest: root},
		},
		Written: []string{member},
	}
	require.NoError(t, r.Summary(s))

	out := buf.String()
	assert.Contains(t, out, "MANIFEST")
	assert.Contains(t, out, "redundant-features")
	assert.Contains(t, out, "dependencies")
	assert.Contains(t, out, "2 finding(s) in 2 manifest(s), 2 checked\n")
	assert.Contains(t, out, "wrote "+filepath.FromSlash("a/Cargo.toml")+"\n")
}

func TestParseModes(t *testing.T) {
	c, err := ParseColorMode("")
	require.NoError(t, err)
	assert.Equal(t, ColorAuto, c)
	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)

	d, err := ParseDiffFormat("unified")
	require.NoError(t, err)
	assert.Equal(t, DiffUnified, d)
	_, err = ParseDiffFormat("side-by-side")
	assert.Error(t, err)
}
