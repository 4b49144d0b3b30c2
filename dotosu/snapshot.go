package dotosu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/vazrupe/endibuf"
)

// Snapshot layout, little endian:
//
//	"OSB1" version:u8 formatVersion:i32
//	general, metadata, difficulty (strings are u16 length + bytes)
//	u32 count, timing points (uninherited is a u8)
//	u32 count, hit objects (kind:u8 x y time type, then the variant payload)
const (
	snapshotMagic   = "OSB1"
	snapshotVersion = 2
)

var errSnapshot = errors.New("dotosu: bad snapshot")

// seekBuffer is an in-memory io.WriteSeeker for endibuf.Writer.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if end := s.pos + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	copy(s.buf[s.pos:], p)
	s.pos += len(p)
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("seekBuffer: bad whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("seekBuffer: negative position %d", abs)
	}
	s.pos = int(abs)
	return abs, nil
}

type snapWriter struct {
	w   *endibuf.Writer
	err error
}

func (s *snapWriter) put(v any) {
	if s.err == nil {
		s.err = s.w.WriteData(v)
	}
}

func (s *snapWriter) i32(v int) {
	if s.err == nil && (v < math.MinInt32 || v > math.MaxInt32) {
		s.err = fmt.Errorf("%w: %d does not fit in 32 bits", errSnapshot, v)
	}
	s.put(int32(v))
}

// flag writes a bool as one byte; WriteData has no bool case.
func (s *snapWriter) flag(v bool) {
	var b uint8
	if v {
		b = 1
	}
	s.put(b)
}

func (s *snapWriter) str(v string) {
	s.put(uint16(len(v)))
	if len(v) > 0 {
		s.put([]byte(v))
	}
}

// MarshalBinary encodes b as a compact binary snapshot.
func (b *Beatmap) MarshalBinary() ([]byte, error) {
	out := &seekBuffer{}
	w := endibuf.NewWriter(out)
	w.Endian = binary.LittleEndian
	s := &snapWriter{w: w}

	s.put([]byte(snapshotMagic))
	s.put(uint8(snapshotVersion))
	s.i32(b.FormatVersion)

	g := b.General
	s.str(g.AudioFilename)
	s.i32(g.AudioLeadIn)
	s.i32(int(g.Countdown))
	s.put(g.StackLeniency)
	s.i32(int(g.Mode))
	s.i32(g.CountdownOffset)

	m := b.Metadata
	s.str(m.Title)
	s.str(m.Artist)
	s.str(m.Creator)
	s.str(m.Version)
	s.i32(m.BeatmapID)
	s.i32(m.BeatmapSetID)

	d := b.Difficulty
	s.put([]float32{d.HPDrainRate, d.CircleSize, d.OverallDifficulty, d.ApproachRate})
	s.put([]float64{d.SliderMultiplier, d.SliderTickRate})

	s.put(uint32(len(b.TimingPoints)))
	for _, tp := range b.TimingPoints {
		s.i32(tp.Time)
		s.put(tp.BeatLength)
		s.i32(tp.Meter)
		s.flag(tp.Uninherited)
	}

	s.put(uint32(len(b.HitObjects)))
	for _, ho := range b.HitObjects {
		s.put(uint8(ho.Kind()))
		p := ho.Pos()
		s.i32(p.X)
		s.i32(p.Y)
		s.i32(ho.StartTime())
		s.i32(int(ho.Flags()))
		switch ho := ho.(type) {
		case Slider:
			s.put(ho.CurveType.Letter())
			s.put(uint32(len(ho.CurvePoints)))
			for _, cp := range ho.CurvePoints {
				s.i32(cp.X)
				s.i32(cp.Y)
			}
			s.i32(ho.Slides)
			s.put(ho.Length)
		case Spinner:
			s.i32(ho.EndTime)
		}
	}
	if s.err != nil {
		return nil, fmt.Errorf("dotosu: encode snapshot: %w", s.err)
	}
	return out.buf, nil
}

type snapReader struct {
	r   *endibuf.Reader
	err error
}

func (s *snapReader) get(v any) {
	if s.err == nil {
		s.err = s.r.ReadData(v)
	}
}

func (s *snapReader) i32() int {
	var v int32
	s.get(&v)
	return int(v)
}

func (s *snapReader) flag() bool {
	var b uint8
	s.get(&b)
	return b != 0
}

func (s *snapReader) count(list string, limit int) int {
	var n uint32
	s.get(&n)
	if s.err == nil {
		s.err = checkLimit(list, int(n), limit)
	}
	if s.err != nil {
		return 0
	}
	return int(n)
}

func (s *snapReader) str() string {
	var n uint16
	s.get(&n)
	if s.err != nil || n == 0 {
		return ""
	}
	if n > MaxStringLen {
		s.err = fmt.Errorf("%w: string of %d bytes", errSnapshot, n)
		return ""
	}
	buf := make([]byte, n)
	s.get(buf)
	return string(buf)
}

// UnmarshalBinary replaces b with the record encoded by MarshalBinary.
// b is left unchanged on error.
func (b *Beatmap) UnmarshalBinary(data []byte) error {
	base := bytes.NewReader(data)
	r := endibuf.NewReader(io.NewSectionReader(base, 0, base.Size()))
	r.Endian = binary.LittleEndian
	s := &snapReader{r: r}

	magic := make([]byte, len(snapshotMagic))
	s.get(magic)
	var version uint8
	s.get(&version)
	if s.err == nil && (string(magic) != snapshotMagic || version != snapshotVersion) {
		return fmt.Errorf("%w: magic %q version %d", errSnapshot, magic, version)
	}

	var out Beatmap
	out.FormatVersion = s.i32()

	g := &out.General
	g.AudioFilename = s.str()
	g.AudioLeadIn = s.i32()
	g.Countdown = Countdown(s.i32())
	s.get(&g.StackLeniency)
	g.Mode = GameMode(s.i32())
	g.CountdownOffset = s.i32()

	m := &out.Metadata
	m.Title = s.str()
	m.Artist = s.str()
	m.Creator = s.str()
	m.Version = s.str()
	m.BeatmapID = s.i32()
	m.BeatmapSetID = s.i32()

	d := &out.Difficulty
	f32 := make([]float32, 4)
	s.get(f32)
	d.HPDrainRate, d.CircleSize, d.OverallDifficulty, d.ApproachRate = f32[0], f32[1], f32[2], f32[3]
	f64 := make([]float64, 2)
	s.get(f64)
	d.SliderMultiplier, d.SliderTickRate = f64[0], f64[1]

	if n := s.count("timing points", DefaultLimits.TimingPoints); n > 0 {
		out.TimingPoints = make([]TimingPoint, n)
		for i := range out.TimingPoints {
			tp := &out.TimingPoints[i]
			tp.Time = s.i32()
			s.get(&tp.BeatLength)
			tp.Meter = s.i32()
			tp.Uninherited = s.flag()
		}
	}

	if n := s.count("hit objects", DefaultLimits.HitObjects); n > 0 {
		out.HitObjects = make([]HitObject, n)
		for i := range out.HitObjects {
			var kind uint8
			s.get(&kind)
			var base BaseHO
			base.PosXY.X = s.i32()
			base.PosXY.Y = s.i32()
			base.Time = s.i32()
			base.Type = HitObjectTypeFlags(s.i32())
			if s.err != nil {
				break
			}
			switch ObjectKind(kind) {
			case KindCircle:
				out.HitObjects[i] = Circle{BaseHO: base}
			case KindSlider:
				sl := Slider{BaseHO: base}
				var letter byte
				s.get(&letter)
				ct, ok := curveTypeOf(letter)
				if s.err == nil && !ok {
					s.err = fmt.Errorf("%w: curve type %q", errSnapshot, letter)
				}
				sl.CurveType = ct
				if n := s.count("curve points", DefaultLimits.CurvePoints); n > 0 {
					sl.CurvePoints = make([]Vec2, n)
					for j := range sl.CurvePoints {
						sl.CurvePoints[j] = Vec2{X: s.i32(), Y: s.i32()}
					}
				} else if s.err == nil {
					sl.CurvePoints = []Vec2{}
				}
				sl.Slides = s.i32()
				s.get(&sl.Length)
				out.HitObjects[i] = sl
			case KindSpinner:
				out.HitObjects[i] = Spinner{BaseHO: base, EndTime: s.i32()}
			default:
				s.err = fmt.Errorf("%w: object kind %d", errSnapshot, kind)
			}
		}
	}

	if s.err != nil {
		out.Release()
		return fmt.Errorf("dotosu: decode snapshot: %w", s.err)
	}
	*b = out
	return nil
}
