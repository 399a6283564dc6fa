package tomledit

import (
	"fmt"
	"slices"
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"
)

// Document is an editable TOML document that preserves formatting.
type Document struct {
	src      []byte
	sections []*section
}

// Parse parses TOML content. Malformed documents are rejected before any
// edit can be made.
func Parse(data []byte) (*Document, error) {
	src := slices.Clone(data)
	sections, err := parse(src)
	if err != nil {
		return nil, err
	}
	if err := validate(src); err != nil {
		return nil, err
	}
	return &Document{src: src, sections: sections}, nil
}

func validate(src []byte) error {
	var v map[string]any
	if err := gotoml.Unmarshal(src, &v); err != nil {
		return fmt.Errorf("invalid TOML: %w", err)
	}
	return nil
}

// String renders the document. Untouched regions are byte-identical to the
// parsed input.
func (d *Document) String() string { return string(d.src) }

// Bytes renders the document.
func (d *Document) Bytes() []byte { return slices.Clone(d.src) }

// Get returns the value at the dotted path, looking through table headers,
// dotted keys and inline tables.
func (d *Document) Get(path ...string) (*Value, bool) {
	var found *Value
	d.walk(func(p []string, e *entry) bool {
		if found != nil {
			return false
		}
		if slices.Equal(p, path) {
			found = e.value
			return false
		}
		return hasPrefix(path, p)
	})
	return found, found != nil
}

// HasTable reports whether anything is defined at or below path: a [path]
// header, a value at path, or a dotted key such as `path.x = 1`.
func (d *Document) HasTable(path ...string) bool {
	for _, sec := range d.sections {
		if sec.header != nil && hasPrefix(sec.header, path) {
			return true
		}
	}
	found := false
	d.walk(func(p []string, _ *entry) bool {
		if hasPrefix(p, path) {
			found = true
		}
		return !found && hasPrefix(path, p)
	})
	return found
}

// walk visits every key/value with its full path. fn returns whether to
// descend into an inline table value.
func (d *Document) walk(fn func(path []string, e *entry) bool) {
	for _, sec := range d.sections {
		if sec.arrayTable {
			continue
		}
		for _, e := range sec.entries {
			walkEntry(concat(sec.header, e.key), e, fn)
		}
	}
}

func walkEntry(path []string, e *entry, fn func([]string, *entry) bool) {
	if !fn(path, e) || e.value.Kind != KindInlineTable {
		return
	}
	for _, child := range e.value.entries {
		walkEntry(concat(path, child.key), child, fn)
	}
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

// hasPrefix reports whether path starts with prefix.
func hasPrefix(path, prefix []string) bool {
	return len(path) >= len(prefix) && slices.Equal(path[:len(prefix)], prefix)
}

// replace swaps src[start:end] for text and re-parses. The document is left
// untouched if the result does not parse.
func (d *Document) replace(start, end int, text string) error {
	var b strings.Builder
	b.Grow(len(d.src) - (end - start) + len(text))
	b.Write(d.src[:start])
	b.WriteString(text)
	b.Write(d.src[end:])
	next := []byte(b.String())

	sections, err := parse(next)
	if err != nil {
		return fmt.Errorf("internal error: edit produced malformed TOML: %w", err)
	}
	if err := validate(next); err != nil {
		return fmt.Errorf("internal error: edit produced invalid TOML: %w", err)
	}
	d.src = next
	d.sections = sections
	return nil
}

// RemoveKey removes tablePath.key in whichever form it is written: a line
// in a table section, an inline table entry, dotted keys below it or a
// [tablePath.key] section together with its sub-tables. Comments trailing a
// removed section are kept. It reports whether anything was removed.
func (d *Document) RemoveKey(tablePath []string, key string) (bool, error) {
	target := concat(tablePath, []string{key})
	removed := false
	for {
		start, end, text, ok := d.nextRemoval(target)
		if !ok {
			return removed, nil
		}
		if err := d.replace(start, end, text); err != nil {
			return removed, err
		}
		removed = true
	}
}

func (d *Document) nextRemoval(target []string) (start, end int, text string, ok bool) {
	for _, sec := range d.sections {
		if sec.header != nil && hasPrefix(sec.header, target) {
			return sec.span.start, d.skipBlankLines(sec.bodyEnd, sec.span.end), "", true
		}
	}
	var victim *entry
	d.walk(func(p []string, e *entry) bool {
		if victim != nil {
			return false
		}
		if hasPrefix(p, target) {
			victim = e
			return false
		}
		return hasPrefix(target, p)
	})
	if victim == nil {
		return 0, 0, "", false
	}
	if victim.parent == nil {
		return victim.line.start, victim.line.end, "", true
	}
	start, end, text = d.removeFromContainer(victim.parent, indexOf(victim.parent.entries, victim), spansOf(victim.parent))
	return start, end, text, true
}

// skipBlankLines returns the end of the run of blank lines starting at pos,
// stopping at limit or at the first line with content.
func (d *Document) skipBlankLines(pos, limit int) int {
	end := pos
	for i := pos; i < limit; i++ {
		switch d.src[i] {
		case ' ', '\t', '\r':
		case '\n':
			end = i + 1
		default:
			return end
		}
	}
	return limit
}

func indexOf[T comparable](s []T, v T) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// spansOf returns the spans of the elements of an array or inline table.
func spansOf(v *Value) []span {
	var out []span
	if v.Kind == KindArray {
		for _, item := range v.Items {
			out = append(out, item.span)
		}
		return out
	}
	for _, e := range v.entries {
		out = append(out, e.span)
	}
	return out
}

// removeFromContainer computes the replacement of container v that drops
// its i-th element together with one adjoining separator. The returned
// range covers the whole container.
func (d *Document) removeFromContainer(v *Value, i int, elems []span) (start, end int, text string) {
	cut := d.elementCut(v, i, elems)
	text = string(d.src[v.span.start:cut.start]) + string(d.src[cut.end:v.span.end])
	if v.Kind == KindInlineTable {
		text = padClosingBrace(text)
	}
	return v.span.start, v.span.end, text
}

func (d *Document) elementCut(v *Value, i int, elems []span) span {
	el := elems[i]
	if v.Kind == KindArray {
		if line, ok := d.ownedLine(v, el); ok {
			return line
		}
	}
	switch {
	case len(elems) == 1:
		// Keep the padding that follows the opening delimiter.
		return span{el.start, v.span.end - 1}
	case i > 0:
		return span{elems[i-1].end, el.end}
	default:
		return span{el.start, elems[1].start}
	}
}

// ownedLine returns the full line of an array item that sits alone on its
// line, trailing comma and comment included.
func (d *Document) ownedLine(v *Value, el span) (span, bool) {
	lineStart := el.start
	for lineStart > v.span.start && d.src[lineStart-1] != '\n' {
		lineStart--
	}
	if lineStart <= v.span.start {
		return span{}, false
	}
	if strings.TrimLeft(string(d.src[lineStart:el.start]), " \t") != "" {
		return span{}, false
	}
	p := &parser{src: d.src, pos: el.end}
	p.skipSpace()
	if !p.eof() && p.peek() == ',' {
		p.pos++
		p.skipSpace()
	}
	if !p.eof() && p.peek() == '#' {
		p.skipComment()
	}
	if p.newline() != nil {
		return span{}, false
	}
	return span{lineStart, p.pos}, true
}

// padClosingBrace restores the space before '}' of an inline table that
// opens with "{ ", so that `{ workspace = true}` renders as
// `{ workspace = true }`.
func padClosingBrace(s string) string {
	if len(s) < 3 || !strings.HasPrefix(s, "{ ") || !strings.HasSuffix(s, "}") {
		return s
	}
	if c := s[len(s)-2]; c == ' ' || c == '\t' || c == '\n' {
		return s
	}
	return s[:len(s)-1] + " }"
}

// RemoveArrayItems removes the items of the array at path for which pred
// returns true and reports how many were removed. Items are removed from
// the last to the first so earlier indices stay valid.
func (d *Document) RemoveArrayItems(path []string, pred func(*Value) bool) (int, error) {
	arr, ok := d.Get(path...)
	if !ok {
		return 0, nil
	}
	if arr.Kind != KindArray {
		return 0, fmt.Errorf("%s is %s, not an array", strings.Join(path, "."), arr.Kind)
	}
	var idx []int
	for i, item := range arr.Items {
		if pred(item) {
			idx = append(idx, i)
		}
	}
	for n, i := range slices.Backward(idx) {
		arr, ok := d.Get(path...)
		if !ok || arr.Kind != KindArray || i >= len(arr.Items) {
			return len(idx) - 1 - n, fmt.Errorf("internal error: array %s changed during removal", strings.Join(path, "."))
		}
		start, end, text := d.removeFromContainer(arr, i, spansOf(arr))
		if err := d.replace(start, end, text); err != nil {
			return len(idx) - 1 - n, err
		}
	}
	return len(idx), nil
}

// DropKeyIfArrayEmpty removes tablePath.key when it holds an empty array.
func (d *Document) DropKeyIfArrayEmpty(tablePath []string, key string) (bool, error) {
	v, ok := d.Get(concat(tablePath, []string{key})...)
	if !ok || v.Kind != KindArray || len(v.Items) > 0 {
		return false, nil
	}
	return d.RemoveKey(tablePath, key)
}

// CollapseInlineTable rewrites `key = { k = v }`, an inline table with a
// single entry written on its own line, into the dotted form `key.k = v`.
func (d *Document) CollapseInlineTable(tablePath []string, key string) (bool, error) {
	target := concat(tablePath, []string{key})
	var found *entry
	d.walk(func(p []string, e *entry) bool {
		if found == nil && e.parent == nil && slices.Equal(p, target) {
			found = e
		}
		return false
	})
	if found == nil || found.value.Kind != KindInlineTable || len(found.value.entries) != 1 {
		return false, nil
	}
	inner := found.value.entries[0]
	if inner.value.Kind == KindInlineTable {
		return false, nil
	}
	text := string(d.src[found.keySpan.start:found.keySpan.end]) + "." +
		string(d.src[inner.span.start:inner.span.end])
	if err := d.replace(found.span.start, found.span.end, text); err != nil {
		return false, err
	}
	return true, nil
}
