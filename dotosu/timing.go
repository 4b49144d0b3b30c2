package dotosu

// countTimingLines counts the lines of the timing block: everything up to a
// blank or whitespace-only line, the next section header or the end of the buffer.
func (c *cursor) countTimingLines() int {
	n := 0
	for i := c.pos; i < len(c.data); {
		if c.data[i] == '[' || c.blankAt(i) {
			return n
		}
		n++
		for i < len(c.data) && c.data[i] != '\n' {
			i++
		}
		i++
	}
	return n
}

func (d *Decoder) timingPoints(c *cursor, b *Beatmap) error {
	n := c.countTimingLines()
	if err := checkLimit("timing points", n, d.Limits.TimingPoints); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	b.TimingPoints = make([]TimingPoint, n)
	for i := range b.TimingPoints {
		if err := c.timingPoint(&b.TimingPoints[i]); err != nil {
			return err
		}
	}
	return nil
}

// timingPoint decodes time,beatLength,meter,sampleSet,sampleIndex,volume,uninherited.
// The sample columns and anything after uninherited are skipped.
func (c *cursor) timingPoint(tp *TimingPoint) (err error) {
	c.field = "time"
	if tp.Time, err = c.readInt(); err != nil {
		return err
	}
	if err = c.skipPast(','); err != nil {
		return err
	}

	c.field = "beatLength"
	if tp.BeatLength, err = c.readFloat(); err != nil {
		return err
	}
	if err = c.skipPast(','); err != nil {
		return err
	}

	c.field = "meter"
	if tp.Meter, err = c.readInt(); err != nil {
		return err
	}
	if err = c.skipPast(','); err != nil {
		return err
	}

	for _, f := range [...]string{"sampleSet", "sampleIndex", "volume"} {
		c.field = f
		if err = c.skipPast(','); err != nil {
			return err
		}
	}

	c.field = "uninherited"
	v, err := c.readInt()
	if err != nil {
		return err
	}
	tp.Uninherited = v != 0

	c.field = ""
	c.nextLine()
	return nil
}
