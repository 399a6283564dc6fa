package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Progress prints `==> label` step lines and counts them.
type Progress struct {
	out   io.Writer
	style lipgloss.Style
	steps int
}

// NewProgress creates a progress printer writing to out.
func NewProgress(out io.Writer, style lipgloss.Style) *Progress {
	return &Progress{out: out, style: style}
}

// Step prints a step line.
func (p *Progress) Step(format string, args ...any) {
	p.steps++
	_, _ = fmt.Fprintln(p.out, p.style.Render("==> "+fmt.Sprintf(format, args...)))
}

// Steps returns the number of steps printed.
func (p *Progress) Steps() int { return p.steps }

// Log prints an informational message between steps.
func (p *Progress) Log(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}
