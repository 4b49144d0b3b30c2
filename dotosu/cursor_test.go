package dotosu

import (
	"errors"
	"testing"
)

func TestCursor_ReadInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		pos  int
	}{
		{"42", 42, 2},
		{"-7,", -7, 2},
		{"+3\r\n", 3, 2},
		{"  15:", 15, 4},
		{"1234.5", 1234, 4},
	}
	for _, tt := range tests {
		c := newCursor([]byte(tt.in))
		got, err := c.readInt()
		if err != nil {
			t.Fatalf("readInt(%q) error: %v", tt.in, err)
		}
		if got != tt.want || c.pos != tt.pos {
			t.Errorf("readInt(%q) = %d @%d, want %d @%d", tt.in, got, c.pos, tt.want, tt.pos)
		}
	}

	for _, in := range []string{"", "-", "x1", ",5", "99999999999999999999"} {
		c := newCursor([]byte(in))
		if _, err := c.readInt(); !errors.Is(err, ErrMalformed) {
			t.Errorf("readInt(%q) err = %v, want ErrMalformed", in, err)
		}
		if c.pos != 0 {
			t.Errorf("readInt(%q) moved the cursor to %d on failure", in, c.pos)
		}
	}
}

func TestCursor_ReadFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		pos  int
	}{
		{"1.4", 1.4, 3},
		{"-66.6666666666667,4", -66.6666666666667, 17},
		{"500\r\n", 500, 3},
		{".5", 0.5, 2},
		{"7.", 7, 2},
		{"1e3,", 1000, 3},
		{"2E-2", 0.02, 4},
		{"3e", 3, 1},
	}
	for _, tt := range tests {
		c := newCursor([]byte(tt.in))
		got, err := c.readFloat()
		if err != nil {
			t.Fatalf("readFloat(%q) error: %v", tt.in, err)
		}
		if got != tt.want || c.pos != tt.pos {
			t.Errorf("readFloat(%q) = %v @%d, want %v @%d", tt.in, got, c.pos, tt.want, tt.pos)
		}
	}

	for _, in := range []string{"", ".", "-.", "abc"} {
		c := newCursor([]byte(in))
		if _, err := c.readFloat(); !errors.Is(err, ErrMalformed) {
			t.Errorf("readFloat(%q) err = %v, want ErrMalformed", in, err)
		}
	}
}

func TestCursor_SkipPastStaysOnLine(t *testing.T) {
	c := newCursor([]byte("a,b\r\nc,d"))
	if err := c.skipPast(','); err != nil || c.pos != 2 {
		t.Fatalf("skipPast = %v @%d, want nil @2", err, c.pos)
	}
	err := c.skipPast(',')
	var se *SyntaxError
	if !errors.As(err, &se) || se.Offset != 2 {
		t.Errorf("skipPast across a line end = %v, want *SyntaxError at 2", err)
	}
}

func TestCursor_CountOnLine(t *testing.T) {
	c := newCursor([]byte("|1:2|3:4|5:6,1,100\r\n"))
	if n, ok := c.countOnLine(':', ','); n != 3 || !ok {
		t.Errorf("countOnLine = %d,%v want 3,true", n, ok)
	}
	c = newCursor([]byte("|1:2\r\n,"))
	if _, ok := c.countOnLine(':', ','); ok {
		t.Error("countOnLine found a terminator on the next line")
	}
}

func TestCursor_LineHandling(t *testing.T) {
	c := newCursor([]byte("ab\r\ncd"))
	if end := c.lineEnd(); end != 2 {
		t.Errorf("lineEnd = %d, want 2", end)
	}
	c.nextLine()
	if c.pos != 4 {
		t.Errorf("nextLine -> %d, want 4", c.pos)
	}
	c.nextLine()
	if !c.eof() || !c.atLineEnd() {
		t.Errorf("nextLine on the last line should reach the end, pos %d", c.pos)
	}
	if c.peek() != 0 || c.peekAt(-100) != 0 {
		t.Error("peek past the buffer should return 0")
	}
}

func TestKeyDisambiguation(t *testing.T) {
	tests := []struct {
		line string
		key  string
		want bool
	}{
		{"Title:x", "Title", true},
		{"Title :x", "Title", true},
		{"TitleUnicode:x", "Title", false},
		{"Countdown: 1", "Countdown", true},
		{"CountdownOffset: 1", "Countdown", false},
		{"BeatmapSetID:1", "BeatmapID", false},
		{"Mode", "Mode", false},
	}
	for _, tt := range tests {
		c := newCursor([]byte(tt.line))
		if got := c.key(tt.key); got != tt.want {
			t.Errorf("key(%q) on %q = %v, want %v", tt.key, tt.line, got, tt.want)
		}
		if !tt.want && c.pos != 0 {
			t.Errorf("failed key(%q) moved the cursor", tt.key)
		}
	}
}
