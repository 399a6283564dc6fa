package rules

import (
	"slices"

	"github.com/alexheretic/cargo-ab-lint/internal/manifest"
)

// FindUnused returns the shared dependency names that no member lists in
// any of its dependency tables, in shared declaration order. A member
// counts as using a name whether its entry inherits or overrides it.
// Names in ignore are never reported.
func FindUnused(shared manifest.DepTable, members []*manifest.Manifest, ignore []string) []string {
	var unused []string
	for _, name := range shared.Names() {
		if slices.Contains(ignore, name) {
			continue
		}
		used := slices.ContainsFunc(members, func(m *manifest.Manifest) bool {
			return m.References(name)
		})
		if !used {
			unused = append(unused, name)
		}
	}
	return unused
}

// UnusedFindings wraps FindUnused results as findings against the root
// manifest.
func UnusedFindings(root *manifest.Manifest, members []*manifest.Manifest, ignore []string) []Finding {
	var findings []Finding
	for _, name := range FindUnused(root.SharedDependencies(), members, ignore) {
		findings = append(findings, Finding{
			Rule:       UnusedSharedDependency,
			Dependency: name,
			Manifest:   root.Path,
		})
	}
	return findings
}
