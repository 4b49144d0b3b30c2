package dotosu

import (
	"errors"
	"fmt"
)

var (
	// ErrIO marks failures of the file loading step, never of decoding.
	ErrIO = errors.New("dotosu: read beatmap")
	// ErrResourceExhausted is returned when a pre-scanned list count is over its limit.
	ErrResourceExhausted = errors.New("dotosu: resource exhausted")
	// ErrFieldTooLong is returned when a string field is longer than MaxStringLen.
	ErrFieldTooLong = errors.New("dotosu: field too long")
	// ErrMalformed is returned when the content is not a valid beatmap.
	ErrMalformed = errors.New("dotosu: malformed beatmap")
)

// Field names a bounded string field.
type Field string

const (
	FieldAudioFilename Field = "AudioFilename"
	FieldTitle         Field = "Title"
	FieldArtist        Field = "Artist"
	FieldCreator       Field = "Creator"
	FieldVersion       Field = "Version"
)

type FieldTooLongError struct {
	Field Field
	Len   int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("dotosu: %s is %d bytes, limit %d", e.Field, e.Len, MaxStringLen)
}

func (e *FieldTooLongError) Is(target error) bool { return target == ErrFieldTooLong }

// SyntaxError reports where decoding stopped.
type SyntaxError struct {
	Offset  int
	Section string
	Field   string
	Msg     string
}

func (e *SyntaxError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("dotosu: [%s] at offset %d: %s", e.Section, e.Offset, e.Msg)
	}
	return fmt.Sprintf("dotosu: [%s] %s at offset %d: %s", e.Section, e.Field, e.Offset, e.Msg)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrMalformed }

type ResourceError struct {
	List  string
	Count int
	Limit int
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("dotosu: %d %s over limit %d", e.Count, e.List, e.Limit)
}

func (e *ResourceError) Is(target error) bool { return target == ErrResourceExhausted }
