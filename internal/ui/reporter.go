package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexheretic/cargo-ab-lint/internal/diff"
	"github.com/alexheretic/cargo-ab-lint/internal/lint"
	"github.com/alexheretic/cargo-ab-lint/internal/rules"
)

// DiffFormat selects how fixes are shown.
type DiffFormat string

const (
	DiffLines   DiffFormat = "lines"
	DiffUnified DiffFormat = "unified"
)

// ParseDiffFormat parses a --diff value, defaulting to lines.
func ParseDiffFormat(s string) (DiffFormat, error) {
	switch DiffFormat(s) {
	case DiffLines, "":
		return DiffLines, nil
	case DiffUnified:
		return DiffUnified, nil
	default:
		return "", fmt.Errorf("unknown diff format: %q (must be lines or unified)", s)
	}
}

// Reporter writes lint progress, findings and diffs. It implements
// lint.Reporter.
type Reporter struct {
	out      io.Writer
	styles   Styles
	format   DiffFormat
	progress *Progress
	base     string
}

var _ lint.Reporter = (*Reporter)(nil)

// NewReporter returns a Reporter writing to out. Paths are shown relative
// to the working directory when they are below it.
func NewReporter(out io.Writer, styles Styles, format DiffFormat) *Reporter {
	base, _ := os.Getwd()
	return &Reporter{
		out:      out,
		styles:   styles,
		format:   format,
		progress: NewProgress(out, styles.Progress),
		base:     base,
	}
}

// Display shortens path for output.
func (r *Reporter) Display(path string) string {
	if r.base == "" {
		return path
	}
	rel, err := filepath.Rel(r.base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// Checking announces a package or the workspace root.
func (r *Reporter) Checking(path string, workspace bool) {
	if workspace {
		r.progress.Step("Checking workspace %s", r.Display(path))
		return
	}
	r.progress.Step("Checking %s", r.Display(path))
}

// Finding prints a warning line.
func (r *Reporter) Finding(f rules.Finding) {
	w, em := r.styles.Warning, r.styles.Emphasis
	var line string
	switch f.Rule {
	case rules.RedundantFeatures:
		line = w.Render("Redundant feature(s) ") + em.Render(quoteList(f.Features)) +
			w.Render(fmt.Sprintf(" for workspace %s ", f.Kind)) + em.Render(f.Dependency)
	case rules.RedundantDefaultFeatures:
		line = w.Render(fmt.Sprintf("Redundant default-features set in workspace %s ", f.Kind)) + em.Render(f.Dependency)
	case rules.UnusedSharedDependency:
		line = w.Render("Unused workspace dependency ") + em.Render(f.Dependency)
	default:
		line = w.Render(f.Message())
	}
	_, _ = fmt.Fprintln(r.out, line)
}

func quoteList(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Diff prints the changes between original and fixed.
func (r *Reporter) Diff(path, original, fixed string) error {
	if r.format == DiffUnified {
		name := filepath.ToSlash(r.Display(path))
		text, err := diff.Unified(original, fixed, "a/"+name, "b/"+name)
		if err != nil {
			return fmt.Errorf("diffing %s: %w", path, err)
		}
		for _, line := range strings.SplitAfter(text, "\n") {
			r.unifiedLine(strings.TrimSuffix(line, "\n"))
		}
		return nil
	}
	for _, l := range diff.Changed(diff.Lines(original, fixed)) {
		switch l.Op {
		case diff.Removed:
			_, _ = fmt.Fprintln(r.out, r.styles.Removed.Render("-"+l.Text))
		case diff.Added:
			_, _ = fmt.Fprintln(r.out, r.styles.Added.Render("+"+l.Text))
		}
	}
	return nil
}

func (r *Reporter) unifiedLine(line string) {
	if line == "" {
		return
	}
	var s string
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		s = r.styles.Header.Render(line)
	case strings.HasPrefix(line, "@@"):
		s = r.styles.Hunk.Render(line)
	case strings.HasPrefix(line, "-"):
		s = r.styles.Removed.Render(line)
	case strings.HasPrefix(line, "+"):
		s = r.styles.Added.Render(line)
	default:
		s = line
	}
	_, _ = fmt.Fprintln(r.out, s)
}

// Hint tells the user how to apply the fixes.
func (r *Reporter) Hint() {
	_, _ = fmt.Fprintln(r.out, r.styles.Hint.Render("Hint: To fix run with ")+r.styles.Hint.Bold(true).Render("--fix"))
}

// AllGood prints the success line.
func (r *Reporter) AllGood() {
	_, _ = fmt.Fprintln(r.out, r.styles.Success.Render("All good ✔"))
}

// Summary prints a table of findings per manifest and rule, followed by
// the files written.
func (r *Reporter) Summary(s *lint.Summary) error {
	_, _ = fmt.Fprintln(r.out)
	tbl := NewTable(r.out, "MANIFEST", "RULE", "DEPENDENCY", "KIND")
	for _, f := range s.Findings {
		kind := "-"
		if f.Rule != rules.UnusedSharedDependency {
			kind = f.Kind.TableKey()
		}
		tbl.Row(r.Display(f.Manifest), f.Rule, f.Dependency, kind)
	}
	if err := tbl.Flush(); err != nil {
		return err
	}
	r.progress.Log("%d finding(s) in %d manifest(s), %d checked", len(s.Findings), len(s.Manifests()), r.progress.Steps())
	for _, path := range s.Written {
		r.progress.Log("wrote %s", r.Display(path))
	}
	for _, path := range s.Declined {
		r.progress.Log("skipped %s", r.Display(path))
	}
	return nil
}
