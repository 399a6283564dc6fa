package tomledit

// Kind classifies a TOML value.
type Kind int

const (
	KindScalar Kind = iota // integers, floats, booleans, dates
	KindString
	KindArray
	KindInlineTable
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindInlineTable:
		return "inline table"
	default:
		return "unknown"
	}
}

type span struct {
	start, end int
}

// Value is a parsed TOML value together with its location in the source.
type Value struct {
	Kind Kind
	// Raw is the value exactly as written, delimiters included.
	Raw string
	// Str is the decoded content of a string value.
	Str string
	// Items holds the elements of an array.
	Items []*Value

	entries []*entry
	span    span
}

// IsString reports whether v is a string equal to s.
func (v *Value) IsString(s string) bool {
	return v != nil && v.Kind == KindString && v.Str == s
}

// Get returns the value stored under key in an inline table.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != KindInlineTable {
		return nil
	}
	for _, e := range v.entries {
		if len(e.key) == 1 && e.key[0] == key {
			return e.value
		}
	}
	return nil
}

// Len returns the number of array items or inline table entries.
func (v *Value) Len() int {
	switch v.Kind {
	case KindArray:
		return len(v.Items)
	case KindInlineTable:
		return len(v.entries)
	default:
		return 0
	}
}

// entry is a key/value pair, either on its own line inside a table section
// or inside an inline table (parent != nil).
type entry struct {
	key     []string
	keySpan span
	value   *Value
	// span covers the key through the end of the value.
	span span
	// line covers the whole line(s) of a section-level entry, trailing
	// comment and newline included.
	line   span
	parent *Value
}

// section is a run of entries under one table header. The first section of
// a document has no header.
type section struct {
	header     []string
	arrayTable bool
	// span runs from the start of the header line to the start of the next
	// header line.
	span span
	// bodyEnd is the end of the header line or of the last entry line,
	// whichever comes later. Trailing comments and blank lines lie beyond it.
	bodyEnd int
	entries []*entry
}
