package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"osuparse/dotosu"
)

func TestParseAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 10; i++ {
		if i == 4 {
			paths = append(paths, writeFile(t, dir, "broken.osu", "[HitObjects]\r\n1,2\r\n"))
			continue
		}
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("%d.osu", i), testMap))
	}
	paths = append(paths, filepath.Join(dir, "missing.osu"))

	results := parseAll(&dotosu.Decoder{Limits: dotosu.DefaultLimits}, paths, 3)
	if len(results) != len(paths) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(paths))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("results[%d].Path = %q, want %q", i, res.Path, paths[i])
		}
		switch {
		case i == 4:
			if !errors.Is(res.Err, dotosu.ErrMalformed) {
				t.Errorf("broken: err = %v, want ErrMalformed", res.Err)
			}
		case i == len(paths)-1:
			if !errors.Is(res.Err, dotosu.ErrIO) {
				t.Errorf("missing: err = %v, want ErrIO", res.Err)
			}
		default:
			if res.Err != nil || res.Beatmap.Metadata.BeatmapID != 42 {
				t.Errorf("results[%d] = %+v", i, res)
			}
		}
	}
}

func TestParseAll_Empty(t *testing.T) {
	if got := parseAll(&dotosu.Decoder{}, nil, 4); len(got) != 0 {
		t.Errorf("parseAll(nil) = %v", got)
	}
}

func TestFailCategory(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: boom", dotosu.ErrIO), failRead},
		{&dotosu.FieldTooLongError{Field: dotosu.FieldTitle, Len: 300}, failTooLong},
		{&dotosu.ResourceError{List: "hit objects", Count: 10, Limit: 1}, failLimits},
		{&dotosu.SyntaxError{Msg: "expected number"}, failInvalid},
		{fmt.Errorf("%w a.osu: boom", errDecodePanic), failPanic},
		{errors.New("other"), failUnknown},
	}
	for _, tt := range tests {
		if got := failCategory(tt.err); got != tt.want {
			t.Errorf("failCategory(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestDecodeOne_Panic(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.osu", testMap)
	// a nil decoder panics on its limits
	res := decodeOne(nil, path)
	if res.Beatmap != nil || !errors.Is(res.Err, errDecodePanic) {
		t.Fatalf("decodeOne = %+v, want a panic error", res)
	}
	if got := failCategory(res.Err); got != failPanic {
		t.Errorf("failCategory = %q, want %q", got, failPanic)
	}
}
