package dotosu

import (
	"fmt"
	"io"
	"os"
)

// ---------- Public API ----------

// DecodeFile reads the whole file at path and parses it with DefaultLimits.
// Read failures wrap ErrIO; everything else comes from Parse.
func DecodeFile(path string) (*Beatmap, error) {
	d := Decoder{Limits: DefaultLimits}
	return d.DecodeFile(path)
}

// Decode reads r to the end and parses it with DefaultLimits.
func Decode(r io.Reader) (*Beatmap, error) {
	d := Decoder{Limits: DefaultLimits}
	return d.Decode(r)
}

func (d *Decoder) DecodeFile(path string) (*Beatmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return d.Parse(data)
}

func (d *Decoder) Decode(r io.Reader) (*Beatmap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return d.Parse(data)
}
