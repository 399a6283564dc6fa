// Package ui renders the linter's terminal output.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorMode selects when output is coloured.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode parses a --color value, defaulting to auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(s) {
	case ColorAuto, "":
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	default:
		return "", fmt.Errorf("unknown color mode: %q (must be auto, always, or never)", s)
	}
}

// NewRenderer returns a lipgloss renderer for out honouring mode. In auto
// mode the profile is detected from out, so pipes get no colour.
func NewRenderer(out io.Writer, mode ColorMode) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(out)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// Styles are the output styles of the reporter.
type Styles struct {
	Progress lipgloss.Style
	Warning  lipgloss.Style
	Emphasis lipgloss.Style
	Removed  lipgloss.Style
	Added    lipgloss.Style
	Hunk     lipgloss.Style
	Hint     lipgloss.Style
	Success  lipgloss.Style
	Header   lipgloss.Style
}

// NewStyles builds the styles on r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Progress: r.NewStyle(),
		Warning:  r.NewStyle().Foreground(lipgloss.Color("3")),
		Emphasis: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		Removed:  r.NewStyle().Foreground(lipgloss.Color("1")),
		Added:    r.NewStyle().Foreground(lipgloss.Color("2")),
		Hunk:     r.NewStyle().Foreground(lipgloss.Color("6")),
		Hint:     r.NewStyle().Faint(true),
		Success:  r.NewStyle().Foreground(lipgloss.Color("2")),
		Header:   r.NewStyle().Bold(true),
	}
}
