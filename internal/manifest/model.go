package manifest

// Manifest represents a Cargo.toml file.
type Manifest struct {
	Path      string
	Package   *Package
	Workspace *Workspace
	Targets   []Target

	tables [kindCount]DepTable
}

// Package holds the [package] fields the linter cares about.
type Package struct {
	Name string `toml:"name"`
}

// Workspace represents the [workspace] table of a root manifest.
type Workspace struct {
	Members      []string
	Exclude      []string
	Dependencies DepTable
}

// Target holds the dependency tables of a [target.<cfg>] section.
type Target struct {
	Cfg    string
	tables [kindCount]DepTable
}

// Table returns the dependency table of the given kind.
func (m *Manifest) Table(kind DepKind) DepTable { return m.tables[kind] }

// Table returns the dependency table of the given kind.
func (t *Target) Table(kind DepKind) DepTable { return t.tables[kind] }

// SharedDependencies returns [workspace.dependencies], empty for
// manifests without a workspace.
func (m *Manifest) SharedDependencies() DepTable {
	if m.Workspace == nil {
		return DepTable{}
	}
	return m.Workspace.Dependencies
}

// References reports whether any dependency table of the manifest,
// target-specific ones included, has a key named name.
func (m *Manifest) References(name string) bool {
	for _, kind := range Kinds {
		if m.tables[kind].Has(name) {
			return true
		}
		for i := range m.Targets {
			if m.Targets[i].tables[kind].Has(name) {
				return true
			}
		}
	}
	return false
}

// DepKind identifies a dependency table.
type DepKind int

const (
	Normal DepKind = iota
	Dev
	Build

	kindCount = iota
)

// Kinds lists every dependency table kind in manifest order.
var Kinds = []DepKind{Normal, Dev, Build}

// TableKey returns the TOML key of the table.
func (k DepKind) TableKey() string {
	switch k {
	case Dev:
		return "dev-dependencies"
	case Build:
		return "build-dependencies"
	default:
		return "dependencies"
	}
}

// legacyKey returns the underscore spelling Cargo still accepts.
func (k DepKind) legacyKey() string {
	switch k {
	case Dev:
		return "dev_dependencies"
	case Build:
		return "build_dependencies"
	default:
		return ""
	}
}

// TableKeys returns every spelling of the table key, preferred first.
func (k DepKind) TableKeys() []string {
	if legacy := k.legacyKey(); legacy != "" {
		return []string{k.TableKey(), legacy}
	}
	return []string{k.TableKey()}
}

// String returns the singular label used in messages.
func (k DepKind) String() string {
	switch k {
	case Dev:
		return "dev-dependency"
	case Build:
		return "build-dependency"
	default:
		return "dependency"
	}
}

// Dependency is either a fully specified dependency (Detail) or one
// inherited from [workspace.dependencies] (Inherited). Exactly one is set.
type Dependency struct {
	Detail    *DependencyDetail
	Inherited *InheritedDependency
}

// Features returns the features a fully specified dependency enables on
// its own. A plain version string enables none.
func (d Dependency) Features() []string {
	if d.Detail == nil {
		return nil
	}
	return d.Detail.Features
}

// InheritsWorkspace reports whether the entry sets workspace = true.
func (d Dependency) InheritsWorkspace() bool {
	return d.Inherited != nil && d.Inherited.Workspace
}

// DependencyDetail is a dependency written as a version string or a table.
type DependencyDetail struct {
	Version         string
	Path            string
	Git             string
	Branch          string
	Tag             string
	Rev             string
	Registry        string
	Package         string
	Features        []string
	DefaultFeatures *bool
	Optional        bool
}

// Source describes where the dependency comes from.
func (d *DependencyDetail) Source() string {
	switch {
	case d.Path != "":
		return "path"
	case d.Git != "":
		return "git"
	default:
		return "registry"
	}
}

// InheritedDependency is a `name = { workspace = true, ... }` entry.
type InheritedDependency struct {
	Workspace bool
	Features  []string
	// DefaultFeatures is set when the entry spells out default-features;
	// DefaultFeaturesKey records which spelling was used.
	DefaultFeatures    *bool
	DefaultFeaturesKey string
	Optional           bool
}

// DepTable is a dependency table that remembers declaration order.
type DepTable struct {
	names []string
	deps  map[string]Dependency
}

// NewDepTable builds a table from name/dependency pairs in order.
func NewDepTable(names []string, deps map[string]Dependency) DepTable {
	t := DepTable{}
	for _, n := range names {
		if d, ok := deps[n]; ok {
			t.set(n, d)
		}
	}
	return t
}

func (t *DepTable) set(name string, dep Dependency) {
	if t.deps == nil {
		t.deps = make(map[string]Dependency)
	}
	if _, ok := t.deps[name]; !ok {
		t.names = append(t.names, name)
	}
	t.deps[name] = dep
}

// Names returns the dependency names in declaration order.
func (t DepTable) Names() []string { return t.names }

// Get returns the dependency called name.
func (t DepTable) Get(name string) (Dependency, bool) {
	d, ok := t.deps[name]
	return d, ok
}

// Has reports whether the table has a key called name.
func (t DepTable) Has(name string) bool {
	_, ok := t.deps[name]
	return ok
}

// Len returns the number of dependencies.
func (t DepTable) Len() int { return len(t.names) }
