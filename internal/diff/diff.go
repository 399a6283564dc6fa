// Package diff computes line diffs between an original and a fixed
// manifest.
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Op says what happened to a line.
type Op int

const (
	Unchanged Op = iota
	Removed
	Added
)

// Line is one line of a diff.
type Line struct {
	Op   Op
	Text string
}

// Lines diffs two texts line by line using their longest common
// subsequence. Within a changed region removals come before additions.
func Lines(original, fixed string) []Line {
	a, b := splitLines(original), splitLines(fixed)

	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	out := make([]Line, 0, max(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, Line{Unchanged, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			out = append(out, Line{Removed, a[i]})
			i++
		default:
			out = append(out, Line{Added, b[j]})
			j++
		}
	}
	for ; i < len(a); i++ {
		out = append(out, Line{Removed, a[i]})
	}
	for ; j < len(b); j++ {
		out = append(out, Line{Added, b[j]})
	}
	return out
}

// Changed drops unchanged lines.
func Changed(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if l.Op != Unchanged {
			out = append(out, l)
		}
	}
	return out
}

// splitLines splits on '\n', dropping a trailing '\r' from each line and the
// empty element after a final newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Unified renders a patch-style unified diff with three lines of context.
// It returns an empty string when the texts are equal.
func Unified(original, fixed, fromFile, toFile string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(fixed),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  3,
	})
}
