package lint

import (
	"slices"

	"github.com/alexheretic/cargo-ab-lint/internal/rules"
)

// Summary accumulates the outcome of a run.
type Summary struct {
	Findings []rules.Finding
	// Written lists the files that were rewritten, in write order.
	Written []string
	// Declined lists fixed files the confirmation hook chose not to write.
	Declined []string
}

func (s *Summary) add(f rules.Finding) {
	s.Findings = append(s.Findings, f)
}

// HasFindings reports whether any rule fired.
func (s *Summary) HasFindings() bool {
	return len(s.Findings) > 0
}

// Count returns the number of findings for a rule.
func (s *Summary) Count(id rules.RuleID) int {
	n := 0
	for _, f := range s.Findings {
		if f.Rule == id {
			n++
		}
	}
	return n
}

// Manifests returns the paths with findings, in the order first seen.
func (s *Summary) Manifests() []string {
	var paths []string
	for _, f := range s.Findings {
		if !slices.Contains(paths, f.Manifest) {
			paths = append(paths, f.Manifest)
		}
	}
	return paths
}
