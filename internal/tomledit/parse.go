package tomledit

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type parser struct {
	src []byte
	pos int
}

func parse(src []byte) ([]*section, error) {
	p := &parser{src: src}
	cur := &section{}
	sections := []*section{cur}

	for {
		lineStart := p.pos
		p.skipSpace()
		if p.eof() {
			break
		}
		switch c := p.peek(); {
		case c == '#':
			p.skipComment()
			if err := p.endOfLine(); err != nil {
				return nil, err
			}
		case c == '\n' || c == '\r':
			if err := p.newline(); err != nil {
				return nil, err
			}
		case c == '[':
			cur.span.end = lineStart
			sec, err := p.parseHeader(lineStart)
			if err != nil {
				return nil, err
			}
			cur = sec
			sections = append(sections, sec)
		default:
			e, err := p.parseKeyValue(nil)
			if err != nil {
				return nil, err
			}
			if err := p.endOfLine(); err != nil {
				return nil, err
			}
			e.line = span{lineStart, p.pos}
			cur.entries = append(cur.entries, e)
			cur.bodyEnd = p.pos
		}
	}
	cur.span.end = len(src)
	return sections, nil
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) hasPrefix(s string) bool {
	return bytes.HasPrefix(p.src[p.pos:], []byte(s))
}

func (p *parser) errorf(format string, args ...any) error {
	line, col := 1, 1
	for _, c := range p.src[:min(p.pos, len(p.src))] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return fmt.Errorf("line %d, column %d: %s", line, col, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

func (p *parser) skipComment() {
	for !p.eof() && p.peek() != '\n' {
		if p.hasPrefix("\r\n") {
			return
		}
		p.pos++
	}
}

func (p *parser) newline() error {
	if p.hasPrefix("\r\n") {
		p.pos += 2
		return nil
	}
	if !p.eof() && p.peek() == '\n' {
		p.pos++
		return nil
	}
	return p.errorf("expected newline")
}

// endOfLine consumes trailing whitespace, an optional comment and the
// newline that terminates an expression.
func (p *parser) endOfLine() error {
	p.skipSpace()
	if !p.eof() && p.peek() == '#' {
		p.skipComment()
	}
	if p.eof() {
		return nil
	}
	if err := p.newline(); err != nil {
		return p.errorf("unexpected %q after expression", p.peek())
	}
	return nil
}

// skipTrivia skips whitespace, newlines and comments inside arrays and
// inline tables.
func (p *parser) skipTrivia() error {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t':
			p.pos++
		case '\n', '\r':
			if err := p.newline(); err != nil {
				return err
			}
		case '#':
			p.skipComment()
		default:
			return nil
		}
	}
	return nil
}

func (p *parser) parseHeader(lineStart int) (*section, error) {
	sec := &section{span: span{start: lineStart}}
	p.pos++
	if !p.eof() && p.peek() == '[' {
		sec.arrayTable = true
		p.pos++
	}
	p.skipSpace()
	key, _, err := p.parseKey()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	closing := "]"
	if sec.arrayTable {
		closing = "]]"
	}
	if !p.hasPrefix(closing) {
		return nil, p.errorf("expected %q to close table header", closing)
	}
	p.pos += len(closing)
	sec.header = key
	if err := p.endOfLine(); err != nil {
		return nil, err
	}
	sec.bodyEnd = p.pos
	return sec, nil
}

func (p *parser) parseKey() ([]string, span, error) {
	start := p.pos
	part, err := p.parseSimpleKey()
	if err != nil {
		return nil, span{}, err
	}
	parts := []string{part}
	for {
		save := p.pos
		p.skipSpace()
		if p.eof() || p.peek() != '.' {
			p.pos = save
			break
		}
		p.pos++
		p.skipSpace()
		part, err := p.parseSimpleKey()
		if err != nil {
			return nil, span{}, err
		}
		parts = append(parts, part)
	}
	return parts, span{start, p.pos}, nil
}

func isBareKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func (p *parser) parseSimpleKey() (string, error) {
	if p.eof() {
		return "", p.errorf("expected key")
	}
	switch p.peek() {
	case '"':
		if p.hasPrefix(`"""`) {
			return "", p.errorf("multi-line string cannot be used as a key")
		}
		return p.parseBasicString()
	case '\'':
		if p.hasPrefix(`'''`) {
			return "", p.errorf("multi-line string cannot be used as a key")
		}
		return p.parseLiteralString()
	}
	start := p.pos
	for !p.eof() && isBareKeyChar(p.peek()) {
		p.pos++
	}
	if start == p.pos {
		return "", p.errorf("unexpected %q, expected key", p.peek())
	}
	return string(p.src[start:p.pos]), nil
}

func (p *parser) parseKeyValue(parent *Value) (*entry, error) {
	start := p.pos
	key, keySpan, err := p.parseKey()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.eof() || p.peek() != '=' {
		return nil, p.errorf("expected '=' after key %q", strings.Join(key, "."))
	}
	p.pos++
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &entry{
		key:     key,
		keySpan: keySpan,
		value:   v,
		span:    span{start, p.pos},
		parent:  parent,
	}, nil
}

func (p *parser) parseValue() (*Value, error) {
	if p.eof() {
		return nil, p.errorf("expected value")
	}
	start := p.pos
	v := &Value{}
	var err error
	switch c := p.peek(); c {
	case '"':
		v.Kind = KindString
		if p.hasPrefix(`"""`) {
			v.Str, err = p.parseMultilineString(`"""`, true)
		} else {
			v.Str, err = p.parseBasicString()
		}
	case '\'':
		v.Kind = KindString
		if p.hasPrefix(`'''`) {
			v.Str, err = p.parseMultilineString(`'''`, false)
		} else {
			v.Str, err = p.parseLiteralString()
		}
	case '[':
		err = p.parseArray(v)
	case '{':
		err = p.parseInlineTable(v)
	default:
		v.Kind = KindScalar
		err = p.parseScalar()
	}
	if err != nil {
		return nil, err
	}
	v.span = span{start, p.pos}
	v.Raw = string(p.src[start:p.pos])
	return v, nil
}

func (p *parser) parseArray(v *Value) error {
	v.Kind = KindArray
	p.pos++
	for {
		if err := p.skipTrivia(); err != nil {
			return err
		}
		if p.eof() {
			return p.errorf("unterminated array")
		}
		if p.peek() == ']' {
			p.pos++
			return nil
		}
		item, err := p.parseValue()
		if err != nil {
			return err
		}
		v.Items = append(v.Items, item)
		if err := p.skipTrivia(); err != nil {
			return err
		}
		if p.eof() {
			return p.errorf("unterminated array")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return nil
		default:
			return p.errorf("unexpected %q in array, expected ',' or ']'", p.peek())
		}
	}
}

func (p *parser) parseInlineTable(v *Value) error {
	v.Kind = KindInlineTable
	p.pos++
	for {
		if err := p.skipTrivia(); err != nil {
			return err
		}
		if p.eof() {
			return p.errorf("unterminated inline table")
		}
		if p.peek() == '}' {
			p.pos++
			return nil
		}
		e, err := p.parseKeyValue(v)
		if err != nil {
			return err
		}
		v.entries = append(v.entries, e)
		if err := p.skipTrivia(); err != nil {
			return err
		}
		if p.eof() {
			return p.errorf("unterminated inline table")
		}
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return nil
		default:
			return p.errorf("unexpected %q in inline table, expected ',' or '}'", p.peek())
		}
	}
}

func isScalarChar(c byte) bool {
	return isBareKeyChar(c) || c == '+' || c == '.' || c == ':'
}

func isDate(s []byte) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i != 4 && i != 7 && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// parseScalar consumes numbers, booleans and date-times. Their exact syntax
// is left to the strict decoder; only the extent is determined here.
func (p *parser) parseScalar() error {
	start := p.pos
	for !p.eof() && isScalarChar(p.peek()) {
		p.pos++
	}
	if start == p.pos {
		return p.errorf("unexpected %q, expected value", p.peek())
	}
	// A local date may be followed by a space and a time.
	if isDate(p.src[start:p.pos]) && p.pos+1 < len(p.src) && p.peek() == ' ' &&
		p.src[p.pos+1] >= '0' && p.src[p.pos+1] <= '9' {
		p.pos++
		for !p.eof() && isScalarChar(p.peek()) {
			p.pos++
		}
	}
	return nil
}

func (p *parser) parseBasicString() (string, error) {
	p.pos++
	start := p.pos
	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}
		switch p.peek() {
		case '\\':
			p.pos += 2
		case '"':
			raw := p.src[start:p.pos]
			p.pos++
			s, err := unescape(raw)
			if err != nil {
				return "", p.errorf("%v", err)
			}
			return s, nil
		case '\n', '\r':
			return "", p.errorf("newline in string")
		default:
			p.pos++
		}
	}
}

func (p *parser) parseLiteralString() (string, error) {
	p.pos++
	start := p.pos
	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}
		switch p.peek() {
		case '\'':
			s := string(p.src[start:p.pos])
			p.pos++
			return s, nil
		case '\n', '\r':
			return "", p.errorf("newline in string")
		default:
			p.pos++
		}
	}
}

func (p *parser) parseMultilineString(delim string, escapes bool) (string, error) {
	p.pos += len(delim)
	start := p.pos
	q := delim[0]
	for {
		if p.eof() {
			return "", p.errorf("unterminated multi-line string")
		}
		c := p.peek()
		if escapes && c == '\\' {
			p.pos += 2
			continue
		}
		if c != q || !p.hasPrefix(delim) {
			p.pos++
			continue
		}
		// Up to two quotes may sit right before the closing delimiter.
		end := p.pos
		n := 0
		for end+n < len(p.src) && p.src[end+n] == q {
			n++
		}
		if n > 5 {
			return "", p.errorf("too many quotes in multi-line string")
		}
		end += n - 3
		raw := p.src[start:end]
		p.pos = end + 3
		raw = bytes.TrimPrefix(raw, []byte("\r\n"))
		raw = bytes.TrimPrefix(raw, []byte("\n"))
		if !escapes {
			return string(raw), nil
		}
		s, err := unescape(raw)
		if err != nil {
			return "", p.errorf("%v", err)
		}
		return s, nil
	}
}

func unescape(raw []byte) (string, error) {
	if bytes.IndexByte(raw, '\\') < 0 {
		return string(raw), nil
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(raw) {
			return "", fmt.Errorf("trailing backslash in string")
		}
		switch raw[i] {
		case 'b':
			b.WriteByte('\b')
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'f':
			b.WriteByte('\f')
		case 'r':
			b.WriteByte('\r')
		case 'e':
			b.WriteByte(0x1b)
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'u', 'U':
			n := 4
			if raw[i] == 'U' {
				n = 8
			}
			if i+n >= len(raw) {
				return "", fmt.Errorf("short unicode escape")
			}
			code, err := strconv.ParseUint(string(raw[i+1:i+1+n]), 16, 32)
			if err != nil || !utf8.ValidRune(rune(code)) {
				return "", fmt.Errorf("invalid unicode escape %q", raw[i-1:i+1+n])
			}
			b.WriteRune(rune(code))
			i += n
		case ' ', '\t', '\r', '\n':
			// Line-ending backslash: trim all whitespace up to the next
			// non-whitespace character.
			j := i
			for j < len(raw) && (raw[j] == ' ' || raw[j] == '\t') {
				j++
			}
			if j < len(raw) && raw[j] != '\n' && raw[j] != '\r' {
				return "", fmt.Errorf("invalid escape sequence")
			}
			for j < len(raw) && (raw[j] == ' ' || raw[j] == '\t' || raw[j] == '\n' || raw[j] == '\r') {
				j++
			}
			i = j - 1
		default:
			return "", fmt.Errorf("invalid escape sequence \\%c", raw[i])
		}
	}
	return b.String(), nil
}
