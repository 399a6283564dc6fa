package tomledit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `# top comment
[package]
name = "demo"   # trailing
version = "0.1.0"
authors = ['Jane <jane@example.com>']
description = """
A "demo" crate.\
  Continued."""
released = 1979-05-27 07:32:00Z

[dependencies]
foo = { workspace = true, features = ["a", "c"] }
"quoted.key" = "1"
bar.workspace = true
bar.features = [
    "x",   # first
    "y",
]

[dev-dependencies.baz]
workspace = true
default-features = false

[[bin]]
name = "demo"
path = "src/main.rs"

[target.'cfg(unix)'.dependencies]
libc = "0.2"
`

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestParse_roundTrip(t *testing.T) {
	inputs := []string{
		sampleManifest,
		"",
		"a = 1",
		"a = 1\r\nb = [1, 2]\r\n",
		"\n\n# only comments\n\n",
		"[t]\nx = { a = { b = [ 1 , 2 , ] } }\n",
	}
	for _, in := range inputs {
		doc := mustParse(t, in)
		assert.Equal(t, in, doc.String())
	}
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing equals", "a 1\n"},
		{"unterminated array", "a = [1, 2\n"},
		{"unterminated inline table", "a = { b = 1\n"},
		{"unterminated string", "a = \"abc\n"},
		{"garbage after value", "a = 1 2\n"},
		{"bad header", "[a\n"},
		{"duplicate key", "a = 1\na = 2\n"},
		{"bad escape", `a = "\q"` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestDocument_Get(t *testing.T) {
	doc := mustParse(t, sampleManifest)

	v, ok := doc.Get("package", "name")
	require.True(t, ok)
	assert.Equal(t, "demo", v.Str)

	v, ok = doc.Get("package", "description")
	require.True(t, ok)
	assert.Equal(t, `A "demo" crate.Continued.`, v.Str)

	v, ok = doc.Get("dependencies", "foo", "features")
	require.True(t, ok)
	require.Equal(t, KindArray, v.Kind)
	assert.True(t, v.Items[0].IsString("a"))
	assert.True(t, v.Items[1].IsString("c"))

	_, ok = doc.Get("dependencies", "quoted.key")
	assert.True(t, ok)

	v, ok = doc.Get("dependencies", "bar", "features")
	require.True(t, ok)
	assert.Equal(t, 2, v.Len())

	v, ok = doc.Get("dev-dependencies", "baz", "default-features")
	require.True(t, ok)
	assert.Equal(t, "false", v.Raw)

	v, ok = doc.Get("target", "cfg(unix)", "dependencies", "libc")
	require.True(t, ok)
	assert.Equal(t, "0.2", v.Str)

	_, ok = doc.Get("dependencies", "missing")
	assert.False(t, ok)

	// Array tables are not addressable by path.
	_, ok = doc.Get("bin", "name")
	assert.False(t, ok)

	assert.True(t, doc.HasTable("dev-dependencies"))
	assert.False(t, doc.HasTable("build-dependencies"))
}

func TestHasTable_dottedKeys(t *testing.T) {
	doc := mustParse(t, `[dependencies]
foo.workspace = true
foo.features = ["a"]
bar = { workspace = true }
`)
	assert.True(t, doc.HasTable("dependencies", "foo"))
	assert.True(t, doc.HasTable("dependencies", "bar"))
	assert.False(t, doc.HasTable("dependencies", "fo"))
	assert.False(t, doc.HasTable("dependencies", "foo", "version"))
}

func TestRemoveKey_inlineTable(t *testing.T) {
	tests := []struct {
		name string
		src  string
		key  string
		want string
	}{
		{
			name: "last entry",
			src:  "[dependencies]\nfoo = { workspace = true, default-features = false }\n",
			key:  "default-features",
			want: "[dependencies]\nfoo = { workspace = true }\n",
		},
		{
			name: "first entry",
			src:  "[dependencies]\nfoo = { default-features = false, workspace = true }\n",
			key:  "default-features",
			want: "[dependencies]\nfoo = { workspace = true }\n",
		},
		{
			name: "middle entry",
			src:  "[dependencies]\nfoo = { workspace = true, default_features = false, optional = true }\n",
			key:  "default_features",
			want: "[dependencies]\nfoo = { workspace = true, optional = true }\n",
		},
		{
			name: "restores space before closing brace",
			src:  "[dependencies]\nfoo = { workspace = true, default-features = false}\n",
			key:  "default-features",
			want: "[dependencies]\nfoo = { workspace = true }\n",
		},
		{
			name: "compact style kept",
			src:  "[dependencies]\nfoo = {workspace = true, default-features = false}\n",
			key:  "default-features",
			want: "[dependencies]\nfoo = {workspace = true}\n",
		},
		{
			name: "only entry",
			src:  "[dependencies]\nfoo = { default-features = false }\n",
			key:  "default-features",
			want: "[dependencies]\nfoo = { }\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.src)
			removed, err := doc.RemoveKey([]string{"dependencies", "foo"}, tt.key)
			require.NoError(t, err)
			assert.True(t, removed)
			assert.Equal(t, tt.want, doc.String())
		})
	}
}

func TestRemoveKey_sectionLine(t *testing.T) {
	src := `[dev-dependencies.baz]
workspace = true
default-features = false # has no effect
features = ["a"]
`
	doc := mustParse(t, src)
	removed, err := doc.RemoveKey([]string{"dev-dependencies", "baz"}, "default-features")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "[dev-dependencies.baz]\nworkspace = true\nfeatures = [\"a\"]\n", doc.String())
}

func TestRemoveKey_everyForm(t *testing.T) {
	src := `[workspace]
members = ["crates/*"]

[workspace.dependencies]
# http
bar = "1"
baz = { version = "2" }
quux.version = "1"
quux.features = ["a"]

[workspace.dependencies.qux]
version = "3"

[workspace.dependencies.qux.metadata]
x = 1
`
	doc := mustParse(t, src)
	table := []string{"workspace", "dependencies"}
	for _, key := range []string{"bar", "quux", "qux"} {
		removed, err := doc.RemoveKey(table, key)
		require.NoError(t, err, key)
		assert.True(t, removed, key)
	}
	want := `[workspace]
members = ["crates/*"]

[workspace.dependencies]
# http
baz = { version = "2" }

`
	assert.Equal(t, want, doc.String())

	removed, err := doc.RemoveKey(table, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, want, doc.String())
}

func TestRemoveKey_sectionKeepsFollowingComment(t *testing.T) {
	doc := mustParse(t, `[workspace.dependencies]
bar = "1"

[workspace.dependencies.baz]
version = "1"

# release settings
[profile.release]
lto = true
`)
	removed, err := doc.RemoveKey([]string{"workspace", "dependencies"}, "baz")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, `[workspace.dependencies]
bar = "1"

# release settings
[profile.release]
lto = true
`, doc.String())
}

func TestRemoveKey_lastLineWithoutNewline(t *testing.T) {
	doc := mustParse(t, "[dependencies]\na = \"1\"\nb = \"2\"")
	removed, err := doc.RemoveKey([]string{"dependencies"}, "b")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "[dependencies]\na = \"1\"\n", doc.String())
}

func TestRemoveArrayItems(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		remove []string
		want   string
		count  int
	}{
		{
			name:   "first of two",
			src:    "[dependencies]\nfoo = { workspace = true, features = [\"a\", \"c\"] }\n",
			remove: []string{"a"},
			want:   "[dependencies]\nfoo = { workspace = true, features = [\"c\"] }\n",
			count:  1,
		},
		{
			name:   "last of two",
			src:    "[dependencies]\nfoo = { workspace = true, features = [\"a\", \"c\"] }\n",
			remove: []string{"c"},
			want:   "[dependencies]\nfoo = { workspace = true, features = [\"a\"] }\n",
			count:  1,
		},
		{
			name:   "all items",
			src:    "[dependencies]\nfoo = { workspace = true, features = [\"a\", \"c\"] }\n",
			remove: []string{"a", "c"},
			want:   "[dependencies]\nfoo = { workspace = true, features = [] }\n",
			count:  2,
		},
		{
			name:   "padded single item",
			src:    "[dependencies]\nfoo = { workspace = true, features = [ \"a\" ] }\n",
			remove: []string{"a"},
			want:   "[dependencies]\nfoo = { workspace = true, features = [ ] }\n",
			count:  1,
		},
		{
			name:   "none match",
			src:    "[dependencies]\nfoo = { workspace = true, features = [\"a\"] }\n",
			remove: []string{"z"},
			want:   "[dependencies]\nfoo = { workspace = true, features = [\"a\"] }\n",
			count:  0,
		},
		{
			name: "multi-line array drops whole lines",
			src: `[dependencies.foo]
workspace = true
features = [
    "a",   # first
    "b",
    # keep me
    "c"
]
`,
			remove: []string{"a", "c"},
			want: `[dependencies.foo]
workspace = true
features = [
    "b",
    # keep me
]
`,
			count: 2,
		},
		{
			name:   "duplicates removed",
			src:    "[dependencies]\nfoo = { workspace = true, features = [\"a\", \"b\", \"a\"] }\n",
			remove: []string{"a"},
			want:   "[dependencies]\nfoo = { workspace = true, features = [\"b\"] }\n",
			count:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.src)
			n, err := doc.RemoveArrayItems([]string{"dependencies", "foo", "features"}, func(v *Value) bool {
				for _, r := range tt.remove {
					if v.IsString(r) {
						return true
					}
				}
				return false
			})
			require.NoError(t, err)
			assert.Equal(t, tt.count, n)
			assert.Equal(t, tt.want, doc.String())
		})
	}
}

func TestRemoveArrayItems_notAnArray(t *testing.T) {
	doc := mustParse(t, "[dependencies]\nfoo = \"1\"\n")
	_, err := doc.RemoveArrayItems([]string{"dependencies", "foo"}, func(*Value) bool { return true })
	assert.Error(t, err)

	n, err := doc.RemoveArrayItems([]string{"dependencies", "bar"}, func(*Value) bool { return true })
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDropKeyIfArrayEmpty(t *testing.T) {
	doc := mustParse(t, "[dependencies]\nfoo = { workspace = true, features = [] }\nbar = { workspace = true, features = [\"x\"] }\n")

	dropped, err := doc.DropKeyIfArrayEmpty([]string{"dependencies", "foo"}, "features")
	require.NoError(t, err)
	assert.True(t, dropped)

	dropped, err = doc.DropKeyIfArrayEmpty([]string{"dependencies", "bar"}, "features")
	require.NoError(t, err)
	assert.False(t, dropped)

	assert.Equal(t, "[dependencies]\nfoo = { workspace = true }\nbar = { workspace = true, features = [\"x\"] }\n", doc.String())
}

func TestCollapseInlineTable(t *testing.T) {
	doc := mustParse(t, "[dependencies]\nfoo = { workspace = true } # shared\nbar = { workspace = true, optional = true }\n")

	collapsed, err := doc.CollapseInlineTable([]string{"dependencies"}, "foo")
	require.NoError(t, err)
	assert.True(t, collapsed)

	collapsed, err = doc.CollapseInlineTable([]string{"dependencies"}, "bar")
	require.NoError(t, err)
	assert.False(t, collapsed)

	assert.Equal(t, "[dependencies]\nfoo.workspace = true # shared\nbar = { workspace = true, optional = true }\n", doc.String())

	v, ok := doc.Get("dependencies", "foo", "workspace")
	require.True(t, ok)
	assert.Equal(t, "true", v.Raw)
}

func TestPadClosingBrace(t *testing.T) {
	tests := []struct{ in, want string }{
		{"{ workspace = true}", "{ workspace = true }"},
		{"{ workspace = true }", "{ workspace = true }"},
		{"{workspace = true}", "{workspace = true}"},
		{"{ }", "{ }"},
		{"[1]", "[1]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, padClosingBrace(tt.in), tt.in)
	}
}

func TestEdits_leaveOtherBytesUntouched(t *testing.T) {
	doc := mustParse(t, sampleManifest)
	removed, err := doc.RemoveKey([]string{"dev-dependencies", "baz"}, "default-features")
	require.NoError(t, err)
	require.True(t, removed)

	want := `# top comment
[package]
name = "demo"   # trailing
version = "0.1.0"
authors = ['Jane <jane@example.com>']
description = """
A "demo" crate.\
  Continued."""
released = 1979-05-27 07:32:00Z

[dependencies]
foo = { workspace = true, features = ["a", "c"] }
"quoted.key" = "1"
bar.workspace = true
bar.features = [
    "x",   # first
    "y",
]

[dev-dependencies.baz]
workspace = true

[[bin]]
name = "demo"
path = "src/main.rs"

[target.'cfg(unix)'.dependencies]
libc = "0.2"
`
	assert.Equal(t, want, doc.String())

	n, err := doc.RemoveArrayItems([]string{"dependencies", "bar", "features"}, func(v *Value) bool { return v.IsString("x") })
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, doc.String(), "bar.features = [\n    \"y\",\n]\n")
}
