package dotosu

import "bytes"

const (
	utf8BOM      = "\xef\xbb\xbf"
	formatHeader = "osu file format v"
)

// Limits caps the pre-scanned size of each list before it is allocated.
// A zero field means no limit.
type Limits struct {
	TimingPoints int
	HitObjects   int
	CurvePoints  int // per slider
}

var DefaultLimits = Limits{
	TimingPoints: 1 << 16,
	HitObjects:   1 << 20,
	CurvePoints:  1 << 12,
}

func checkLimit(list string, n, limit int) error {
	if limit > 0 && n > limit {
		return &ResourceError{List: list, Count: n, Limit: limit}
	}
	return nil
}

// Decoder parses beatmap buffers. The zero value has no limits.
type Decoder struct {
	Limits Limits
}

// Parse decodes data with DefaultLimits.
func Parse(data []byte) (*Beatmap, error) {
	d := Decoder{Limits: DefaultLimits}
	return d.Parse(data)
}

func (d *Decoder) Parse(data []byte) (*Beatmap, error) {
	b := &Beatmap{}
	if err := d.ParseInto(data, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ParseInto populates out from data in a single pass. On failure out is left
// as it was and every list built so far is released.
func (d *Decoder) ParseInto(data []byte, out *Beatmap) error {
	var b Beatmap
	if err := d.parse(newCursor(data), &b); err != nil {
		b.Release()
		return err
	}
	*out = b
	return nil
}

func (d *Decoder) parse(c *cursor, b *Beatmap) error {
	if c.hasPrefix(utf8BOM) {
		c.pos += len(utf8BOM)
	}
	if c.hasPrefix(formatHeader) {
		c.pos += len(formatHeader)
		c.field = "FormatVersion"
		v, err := c.readInt()
		if err != nil {
			return err
		}
		b.FormatVersion = v
		c.field = ""
		c.nextLine()
	}

	for !c.eof() {
		if c.peek() == '[' {
			if err := c.header(); err != nil {
				return err
			}
			switch c.sec {
			case secTimingPoints:
				if err := d.timingPoints(c, b); err != nil {
					return err
				}
				c.sec = secNone
			case secHitObjects:
				// always the last section
				return d.hitObjects(c, b)
			}
			continue
		}

		var err error
		switch c.sec {
		case secGeneral:
			err = generalField(c, &b.General)
		case secMetadata:
			err = metadataField(c, &b.Metadata)
		case secDifficulty:
			err = difficultyField(c, &b.Difficulty)
		}
		if err != nil {
			return err
		}
		c.field = ""
		c.nextLine()
	}
	return nil
}

// header reads a "[Name]" line and switches the section state.
func (c *cursor) header() error {
	c.sec, c.field = secNone, ""
	end := c.lineEnd()
	i := bytes.IndexByte(c.data[c.pos:end], ']')
	if i < 0 {
		return c.errorf("unterminated section header")
	}
	c.sec = sectionOf(c.data[c.pos+1 : c.pos+i])
	c.nextLine()
	return nil
}

func sectionOf(name []byte) section {
	if len(name) == 0 {
		return secNone
	}
	var want string
	var sec section
	switch name[0] {
	case 'G':
		want, sec = "General", secGeneral
	case 'M':
		want, sec = "Metadata", secMetadata
	case 'D':
		want, sec = "Difficulty", secDifficulty
	case 'T':
		want, sec = "TimingPoints", secTimingPoints
	case 'H':
		want, sec = "HitObjects", secHitObjects
	default:
		return secNone
	}
	if string(name) != want {
		return secNone
	}
	return sec
}
