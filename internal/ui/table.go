package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table renders rows in aligned columns. Nothing is written until Flush,
// and a table without rows writes nothing at all.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(out io.Writer, headers ...string) *Table {
	return &Table{out: out, headers: headers}
}

// Row appends a row of values, one per header.
func (t *Table) Row(values ...any) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	t.rows = append(t.rows, parts)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Flush writes the header and rows.
func (t *Table) Flush() error {
	if len(t.rows) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(t.headers, "\t"))
	for _, row := range t.rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
