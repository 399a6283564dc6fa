package manifest

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
)

type rawManifest struct {
	Package   *Package      `toml:"package"`
	Workspace *rawWorkspace `toml:"workspace"`
}

type rawWorkspace struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

// Load reads and parses a Cargo.toml file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from workspace discovery
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse parses and validates Cargo.toml content.
func Parse(data []byte) (*Manifest, error) {
	var raw rawManifest
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest TOML: %w", err)
	}

	var all map[string]any
	if err := toml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parsing manifest TOML: %w", err)
	}

	d := decoder{all: all, keys: md.Keys()}
	m := &Manifest{Package: raw.Package}

	for _, kind := range Kinds {
		t, err := d.depTable(kind, nil)
		if err != nil {
			return nil, err
		}
		m.tables[kind] = t
	}

	if raw.Workspace != nil {
		shared, err := d.table([]string{"workspace", "dependencies"})
		if err != nil {
			return nil, err
		}
		m.Workspace = &Workspace{
			Members:      raw.Workspace.Members,
			Exclude:      raw.Workspace.Exclude,
			Dependencies: shared,
		}
	}

	for _, cfg := range d.childNames([]string{"target"}) {
		target := Target{Cfg: cfg}
		for _, kind := range Kinds {
			t, err := d.depTable(kind, []string{"target", cfg})
			if err != nil {
				return nil, err
			}
			target.tables[kind] = t
		}
		m.Targets = append(m.Targets, target)
	}

	if err := validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

func validate(m *Manifest) error {
	if m.Workspace == nil {
		return nil
	}
	for _, name := range m.Workspace.Dependencies.Names() {
		dep, _ := m.Workspace.Dependencies.Get(name)
		if dep.Inherited != nil {
			return fmt.Errorf("manifest: workspace.dependencies.%s cannot inherit from the workspace", name)
		}
	}
	return nil
}

// decoder turns the loosely typed tables of a decoded manifest into
// DepTables, keeping the order in which keys appear in the file.
type decoder struct {
	all  map[string]any
	keys []toml.Key
}

// childNames returns the distinct keys directly below prefix, in file order.
func (d decoder) childNames(prefix []string) []string {
	var names []string
	for _, k := range d.keys {
		if len(k) <= len(prefix) || !slices.Equal(k[:len(prefix)], prefix) {
			continue
		}
		if name := k[len(prefix)]; !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func (d decoder) depTable(kind DepKind, prefix []string) (DepTable, error) {
	t, err := d.table(append(slices.Clone(prefix), kind.TableKey()))
	if err != nil {
		return DepTable{}, err
	}
	if legacy := kind.legacyKey(); legacy != "" {
		old, err := d.table(append(slices.Clone(prefix), legacy))
		if err != nil {
			return DepTable{}, err
		}
		for _, name := range old.Names() {
			dep, _ := old.Get(name)
			t.set(name, dep)
		}
	}
	return t, nil
}

func (d decoder) table(path []string) (DepTable, error) {
	var t DepTable
	values, err := d.lookup(path)
	if err != nil || values == nil {
		return t, err
	}
	names := d.childNames(path)
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	for _, name := range names {
		v, ok := values[name]
		if !ok {
			continue
		}
		dep, err := decodeDependency(v)
		if err != nil {
			return t, fmt.Errorf("manifest: %s.%s: %w", joinKey(path), name, err)
		}
		t.set(name, dep)
	}
	return t, nil
}

// lookup returns the table at path, or nil if there is none.
func (d decoder) lookup(path []string) (map[string]any, error) {
	var cur any = d.all
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("manifest: %s is not a table", joinKey(path))
		}
		if cur, ok = m[p]; !ok {
			return nil, nil
		}
	}
	m, ok := cur.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("manifest: %s is not a table", joinKey(path))
	}
	return m, nil
}
