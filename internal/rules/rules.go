// Package rules detects redundant dependency declarations in the members of
// a Cargo workspace. Every function here is pure: it reads parsed manifests
// and returns findings.
package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alexheretic/cargo-ab-lint/internal/manifest"
)

// RuleID identifies a lint rule.
type RuleID string

const (
	// RedundantFeatures flags features an inherited entry repeats from the
	// shared declaration.
	RedundantFeatures RuleID = "redundant-features"
	// RedundantDefaultFeatures flags default-features on an inherited entry,
	// where Cargo ignores it.
	RedundantDefaultFeatures RuleID = "redundant-default-features"
	// UnusedSharedDependency flags shared declarations no member uses.
	UnusedSharedDependency RuleID = "unused-workspace-dependency"
)

// All lists every rule.
var All = []RuleID{RedundantFeatures, RedundantDefaultFeatures, UnusedSharedDependency}

// ParseRuleID validates a rule identifier.
func ParseRuleID(s string) (RuleID, error) {
	id := RuleID(strings.TrimSpace(s))
	if !slices.Contains(All, id) {
		return "", fmt.Errorf("unknown rule %q", s)
	}
	return id, nil
}

// Finding is one detected rule violation.
type Finding struct {
	Rule       RuleID
	Dependency string
	Kind       manifest.DepKind
	// Features lists the redundant features, in declaration order.
	Features []string
	// Manifest is the path of the file the finding belongs to.
	Manifest string
}

// Message describes the finding for humans.
func (f Finding) Message() string {
	switch f.Rule {
	case RedundantFeatures:
		return fmt.Sprintf("Redundant feature(s) %s for workspace %s %s", formatList(f.Features), f.Kind, f.Dependency)
	case RedundantDefaultFeatures:
		return fmt.Sprintf("Redundant default-features set in workspace %s %s", f.Kind, f.Dependency)
	case UnusedSharedDependency:
		return fmt.Sprintf("Unused workspace dependency %s", f.Dependency)
	default:
		return fmt.Sprintf("%s: %s", f.Rule, f.Dependency)
	}
}

func formatList(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// FindRedundantFeatures returns the features of inherited that the shared
// declaration already enables, in the order inherited lists them.
func FindRedundantFeatures(shared manifest.Dependency, inherited *manifest.InheritedDependency) []string {
	if inherited == nil {
		return nil
	}
	enabled := shared.Features()
	var redundant []string
	for _, f := range inherited.Features {
		if slices.Contains(enabled, f) {
			redundant = append(redundant, f)
		}
	}
	return redundant
}

// HasRedundantDefaultFeatures reports whether inherited sets
// default-features (either spelling, either value).
func HasRedundantDefaultFeatures(inherited *manifest.InheritedDependency) bool {
	return inherited != nil && inherited.DefaultFeatures != nil
}

// checkedKinds are the tables the redundancy rules look at. Build
// dependencies only matter for unused-dependency analysis.
var checkedKinds = []manifest.DepKind{manifest.Normal, manifest.Dev}

// CheckPackage applies the redundancy rules to every entry of pkg that
// inherits a shared declaration. Findings follow the shared declaration
// order, normal dependencies before dev-dependencies.
func CheckPackage(shared manifest.DepTable, pkg *manifest.Manifest) []Finding {
	var findings []Finding
	for _, name := range shared.Names() {
		sharedDep, _ := shared.Get(name)
		for _, kind := range checkedKinds {
			dep, ok := pkg.Table(kind).Get(name)
			if !ok || !dep.InheritsWorkspace() {
				continue
			}
			if feats := FindRedundantFeatures(sharedDep, dep.Inherited); len(feats) > 0 {
				findings = append(findings, Finding{
					Rule:       RedundantFeatures,
					Dependency: name,
					Kind:       kind,
					Features:   feats,
					Manifest:   pkg.Path,
				})
			}
			if HasRedundantDefaultFeatures(dep.Inherited) {
				findings = append(findings, Finding{
					Rule:       RedundantDefaultFeatures,
					Dependency: name,
					Kind:       kind,
					Manifest:   pkg.Path,
				})
			}
		}
	}
	return findings
}
