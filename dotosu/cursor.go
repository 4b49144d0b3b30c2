package dotosu

import (
	"bytes"
	"fmt"
	"strconv"
)

// cursor is an advance-only position in the beatmap buffer. Every read is
// bounds-checked and reports failures as *SyntaxError at the current offset.
type cursor struct {
	data  []byte
	pos   int
	sec   section
	field string
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

func (c *cursor) eof() bool { return c.pos >= len(c.data) }

// peek returns the current byte, or 0 at the end of the buffer.
func (c *cursor) peek() byte { return c.peekAt(0) }

func (c *cursor) peekAt(n int) byte {
	if i := c.pos + n; i >= 0 && i < len(c.data) {
		return c.data[i]
	}
	return 0
}

func (c *cursor) errorf(format string, args ...any) error {
	return &SyntaxError{
		Offset:  c.pos,
		Section: c.sec.String(),
		Field:   c.field,
		Msg:     fmt.Sprintf(format, args...),
	}
}

func (c *cursor) hasPrefix(lit string) bool {
	return len(c.data)-c.pos >= len(lit) && string(c.data[c.pos:c.pos+len(lit)]) == lit
}

func (c *cursor) expect(lit string) error {
	if !c.hasPrefix(lit) {
		return c.errorf("expected %q", lit)
	}
	c.pos += len(lit)
	return nil
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.data) && (c.data[c.pos] == ' ' || c.data[c.pos] == '\t') {
		c.pos++
	}
}

// lineEnd is the index of the '\r' or '\n' ending the current line, or len(data).
func (c *cursor) lineEnd() int {
	for i := c.pos; i < len(c.data); i++ {
		if b := c.data[i]; b == '\r' || b == '\n' {
			return i
		}
	}
	return len(c.data)
}

// atLineEnd reports whether nothing but the terminator is left on the line.
func (c *cursor) atLineEnd() bool {
	b := c.peek()
	return c.eof() || b == '\r' || b == '\n'
}

// blankAt reports whether the line starting at i holds only spaces and tabs.
func (c *cursor) blankAt(i int) bool {
	for ; i < len(c.data); i++ {
		switch c.data[i] {
		case ' ', '\t':
		case '\r', '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// nextLine moves to the first byte after the next '\n', or to the end.
func (c *cursor) nextLine() {
	i := bytes.IndexByte(c.data[c.pos:], '\n')
	if i < 0 {
		c.pos = len(c.data)
		return
	}
	c.pos += i + 1
}

// skipPast moves past the next b on the current line.
func (c *cursor) skipPast(b byte) error {
	end := c.lineEnd()
	i := bytes.IndexByte(c.data[c.pos:end], b)
	if i < 0 {
		return c.errorf("missing %q", b)
	}
	c.pos += i + 1
	return nil
}

// countOnLine counts b between the cursor and the next stop byte on the
// current line. ok is false when stop does not occur on the line.
func (c *cursor) countOnLine(b, stop byte) (n int, ok bool) {
	end := c.lineEnd()
	for i := c.pos; i < end; i++ {
		switch c.data[i] {
		case stop:
			return n, true
		case b:
			n++
		}
	}
	return n, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// readInt parses a decimal integer and stops at the first byte that is not
// part of it. Leading spaces and a sign are accepted.
func (c *cursor) readInt() (int, error) {
	c.skipSpace()
	start, i := c.pos, c.pos
	if b := c.peek(); b == '-' || b == '+' {
		i++
	}
	digits := i
	for i < len(c.data) && isDigit(c.data[i]) {
		i++
	}
	if i == digits {
		return 0, c.errorf("expected integer")
	}
	v, err := strconv.Atoi(string(c.data[start:i]))
	if err != nil {
		return 0, c.errorf("integer %q out of range", c.data[start:i])
	}
	c.pos = i
	return v, nil
}

// readFloat parses a decimal floating point literal with an optional
// fraction and exponent, independent of locale.
func (c *cursor) readFloat() (float64, error) {
	c.skipSpace()
	start, i := c.pos, c.pos
	if b := c.peek(); b == '-' || b == '+' {
		i++
	}
	digits := 0
	for i < len(c.data) && isDigit(c.data[i]) {
		i++
		digits++
	}
	if i < len(c.data) && c.data[i] == '.' {
		i++
		for i < len(c.data) && isDigit(c.data[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, c.errorf("expected number")
	}
	if i < len(c.data) && (c.data[i] == 'e' || c.data[i] == 'E') {
		j := i + 1
		if j < len(c.data) && (c.data[j] == '-' || c.data[j] == '+') {
			j++
		}
		if j < len(c.data) && isDigit(c.data[j]) {
			for j < len(c.data) && isDigit(c.data[j]) {
				j++
			}
			i = j
		}
	}
	v, err := strconv.ParseFloat(string(c.data[start:i]), 64)
	if err != nil {
		return 0, c.errorf("number %q out of range", c.data[start:i])
	}
	c.pos = i
	return v, nil
}
