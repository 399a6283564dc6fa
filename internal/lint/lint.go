// Package lint runs the rules over a workspace and applies their fixes to
// format-preserving documents.
package lint

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/alexheretic/cargo-ab-lint/internal/manifest"
	"github.com/alexheretic/cargo-ab-lint/internal/rules"
	"github.com/alexheretic/cargo-ab-lint/internal/tomledit"
)

// Options controls a run.
type Options struct {
	Fix    bool
	DryRun bool
	// Disabled rules are neither reported nor fixed.
	Disabled []rules.RuleID
	// IgnoreUnused names shared dependencies that may stay unused.
	IgnoreUnused []string
	// Collapse rewrites `name = { workspace = true }` left by a fix as
	// `name.workspace = true`.
	Collapse bool
	// Confirm, when set, is asked before each file is written.
	Confirm func(path string) (bool, error)
}

// Reporter receives progress and results as they happen.
type Reporter interface {
	Checking(path string, workspace bool)
	Finding(f rules.Finding)
	Diff(path, original, fixed string) error
}

// Linter lints packages and the workspace root, accumulating a Summary.
type Linter struct {
	opts     Options
	reporter Reporter
	summary  Summary
}

// New returns a Linter.
func New(opts Options, reporter Reporter) *Linter {
	return &Linter{opts: opts, reporter: reporter}
}

// Summary returns what has been found and written so far.
func (l *Linter) Summary() *Summary { return &l.summary }

func (l *Linter) enabled(id rules.RuleID) bool {
	return !slices.Contains(l.opts.Disabled, id)
}

// Run lints every member and then the root. memberPaths lists member
// manifests in workspace order; a path equal to root.Path lints the root
// package against the root document, which is written once at the end.
func (l *Linter) Run(root *File, memberPaths []string) (*Summary, error) {
	shared := root.Manifest.SharedDependencies()
	members := make([]*manifest.Manifest, 0, len(memberPaths))

	for _, path := range memberPaths {
		f := root
		if path != root.Path {
			var err error
			if f, err = LoadFile(path); err != nil {
				return &l.summary, err
			}
		}
		members = append(members, f.Manifest)

		if _, err := l.Package(shared, f); err != nil {
			return &l.summary, err
		}
		if f != root {
			if err := l.Persist(f); err != nil {
				return &l.summary, err
			}
		}
	}

	if _, err := l.Workspace(root, members); err != nil {
		return &l.summary, err
	}
	if err := l.Persist(root); err != nil {
		return &l.summary, err
	}
	return &l.summary, nil
}

// Package reports the redundancy findings of one package and, when fixing,
// applies them to f.Doc. It reports whether there was anything to fix.
func (l *Linter) Package(shared manifest.DepTable, f *File) (bool, error) {
	l.reporter.Checking(f.Path, false)

	var findings []rules.Finding
	for _, finding := range rules.CheckPackage(shared, f.Manifest) {
		if l.enabled(finding.Rule) {
			findings = append(findings, finding)
		}
	}
	for _, finding := range findings {
		l.summary.add(finding)
		l.reporter.Finding(finding)
	}
	if !l.opts.Fix {
		return len(findings) > 0, nil
	}

	var fixed []string
	for _, finding := range findings {
		if err := l.fixInherited(f, finding); err != nil {
			return true, err
		}
		fixed = append(fixed, tableKey(finding))
	}
	if l.opts.Collapse {
		for _, finding := range findings {
			if err := l.collapse(f, finding); err != nil {
				return true, err
			}
		}
	}
	if len(fixed) > 0 {
		slog.Debug("fixed package entries", "path", f.Path, "entries", fixed)
	}
	return len(findings) > 0, nil
}

func tableKey(f rules.Finding) string {
	return f.Kind.TableKey() + "." + f.Dependency
}

// tablePaths returns the spellings of the dependency table that hold name.
func tablePaths(f *File, kind manifest.DepKind, name string) []string {
	var keys []string
	for _, key := range kind.TableKeys() {
		if f.Doc.HasTable(key, name) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (l *Linter) fixInherited(f *File, finding rules.Finding) error {
	keys := tablePaths(f, finding.Kind, finding.Dependency)
	switch finding.Rule {
	case rules.RedundantFeatures:
		removed := 0
		for _, key := range keys {
			path := []string{key, finding.Dependency, "features"}
			n, err := f.Doc.RemoveArrayItems(path, func(v *tomledit.Value) bool {
				return v.Kind == tomledit.KindString && slices.Contains(finding.Features, v.Str)
			})
			if err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}
			removed += n
			if _, err := f.Doc.DropKeyIfArrayEmpty([]string{key, finding.Dependency}, "features"); err != nil {
				return fmt.Errorf("%s: %w", f.Path, err)
			}
		}
		if removed == 0 {
			return fmt.Errorf("internal error: %s: no features array holds %v for %s",
				f.Path, finding.Features, tableKey(finding))
		}
	case rules.RedundantDefaultFeatures:
		for _, key := range keys {
			for _, field := range []string{"default-features", "default_features"} {
				if _, err := f.Doc.RemoveKey([]string{key, finding.Dependency}, field); err != nil {
					return fmt.Errorf("%s: %w", f.Path, err)
				}
			}
		}
	}
	return nil
}

func (l *Linter) collapse(f *File, finding rules.Finding) error {
	for _, key := range tablePaths(f, finding.Kind, finding.Dependency) {
		v, ok := f.Doc.Get(key, finding.Dependency)
		if !ok || v.Len() != 1 || v.Get("workspace") == nil {
			continue
		}
		if _, err := f.Doc.CollapseInlineTable([]string{key}, finding.Dependency); err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	return nil
}

// Workspace reports shared dependencies no member uses and, when fixing,
// removes them from the root document.
func (l *Linter) Workspace(root *File, members []*manifest.Manifest) (bool, error) {
	if root.Manifest.Workspace == nil {
		return false, nil
	}
	l.reporter.Checking(root.Path, true)
	if !l.enabled(rules.UnusedSharedDependency) {
		return false, nil
	}

	findings := rules.UnusedFindings(root.Manifest, members, l.opts.IgnoreUnused)
	for _, finding := range findings {
		l.summary.add(finding)
		l.reporter.Finding(finding)
	}
	if !l.opts.Fix {
		return len(findings) > 0, nil
	}
	for _, finding := range findings {
		removed, err := root.Doc.RemoveKey([]string{"workspace", "dependencies"}, finding.Dependency)
		if err != nil {
			return true, fmt.Errorf("%s: %w", root.Path, err)
		}
		if !removed {
			return true, fmt.Errorf("internal error: %s: workspace.dependencies.%s not found in document",
				root.Path, finding.Dependency)
		}
	}
	return len(findings) > 0, nil
}

// Persist shows the diff of a changed document and writes it unless this
// is a dry run or the confirmation hook declines.
func (l *Linter) Persist(f *File) error {
	if !l.opts.Fix || !f.Changed() {
		return nil
	}
	fixed := f.Doc.String()
	if err := l.reporter.Diff(f.Path, f.Original, fixed); err != nil {
		return err
	}
	if l.opts.DryRun {
		slog.Debug("dry run, not writing", "path", f.Path)
		return nil
	}
	if l.opts.Confirm != nil {
		ok, err := l.opts.Confirm(f.Path)
		if err != nil {
			return err
		}
		if !ok {
			l.summary.Declined = append(l.summary.Declined, f.Path)
			return nil
		}
	}
	if err := writeFile(f.Path, []byte(fixed)); err != nil {
		return err
	}
	slog.Debug("wrote manifest", "path", f.Path)
	l.summary.Written = append(l.summary.Written, f.Path)
	return nil
}
