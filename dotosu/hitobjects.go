package dotosu

// countHitObjectLines counts the lines left in the buffer that hold more
// than spaces and tabs.
func (c *cursor) countHitObjectLines() int {
	n := 0
	for i := c.pos; i < len(c.data); {
		if !c.blankAt(i) {
			n++
		}
		for i < len(c.data) && c.data[i] != '\n' {
			i++
		}
		i++
	}
	return n
}

func (c *cursor) skipBlankLines() {
	for !c.eof() && c.blankAt(c.pos) {
		c.nextLine()
	}
}

func (d *Decoder) hitObjects(c *cursor, b *Beatmap) error {
	n := c.countHitObjectLines()
	if err := checkLimit("hit objects", n, d.Limits.HitObjects); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	b.HitObjects = make([]HitObject, n)
	for i := range b.HitObjects {
		c.skipBlankLines()
		ho, err := d.hitObject(c)
		if err != nil {
			return err
		}
		b.HitObjects[i] = ho
		c.field = ""
		c.nextLine()
	}
	return nil
}

// hitObject decodes x,y,time,type,hitSound and the parameters selected by the
// type bits. The slider bit wins over the spinner bit.
func (d *Decoder) hitObject(c *cursor) (HitObject, error) {
	var base BaseHO
	var err error

	c.field = "x"
	if base.PosXY.X, err = c.readInt(); err != nil {
		return nil, err
	}
	if err = c.skipPast(','); err != nil {
		return nil, err
	}
	c.field = "y"
	if base.PosXY.Y, err = c.readInt(); err != nil {
		return nil, err
	}
	if err = c.skipPast(','); err != nil {
		return nil, err
	}
	c.field = "time"
	if base.Time, err = c.readInt(); err != nil {
		return nil, err
	}
	if err = c.skipPast(','); err != nil {
		return nil, err
	}
	c.field = "type"
	t, err := c.readInt()
	if err != nil {
		return nil, err
	}
	base.Type = HitObjectTypeFlags(t)

	if base.Type&(TypeSlider|TypeSpinner) == 0 {
		return Circle{BaseHO: base}, nil
	}

	if err = c.skipPast(','); err != nil {
		return nil, err
	}
	c.field = "hitSound"
	if err = c.skipPast(','); err != nil {
		return nil, err
	}

	if base.Type&TypeSlider != 0 {
		return d.slider(c, base)
	}
	c.field = "endTime"
	end, err := c.readInt()
	if err != nil {
		return nil, err
	}
	return Spinner{BaseHO: base, EndTime: end}, nil
}

// slider decodes curveType|x:y|x:y...,slides,length. Edge sets and sounds
// after length are left undecoded.
func (d *Decoder) slider(c *cursor, base BaseHO) (HitObject, error) {
	s := Slider{BaseHO: base}

	c.field = "curveType"
	ct, ok := curveTypeOf(c.peek())
	if !ok {
		return nil, c.errorf("unknown curve type %q", c.peek())
	}
	s.CurveType = ct
	c.pos++

	c.field = "curvePoints"
	n, ok := c.countOnLine(':', ',')
	if !ok {
		return nil, c.errorf("curve points not terminated by ','")
	}
	if err := checkLimit("curve points", n, d.Limits.CurvePoints); err != nil {
		return nil, err
	}
	s.CurvePoints = make([]Vec2, n)
	for i := range s.CurvePoints {
		if err := c.expect("|"); err != nil {
			return nil, err
		}
		x, err := c.readInt()
		if err != nil {
			return nil, err
		}
		if err := c.expect(":"); err != nil {
			return nil, err
		}
		y, err := c.readInt()
		if err != nil {
			return nil, err
		}
		s.CurvePoints[i] = Vec2{X: x, Y: y}
	}
	if err := c.expect(","); err != nil {
		return nil, err
	}

	var err error
	c.field = "slides"
	if s.Slides, err = c.readInt(); err != nil {
		return nil, err
	}
	if err = c.skipPast(','); err != nil {
		return nil, err
	}
	c.field = "length"
	if s.Length, err = c.readFloat(); err != nil {
		return nil, err
	}
	return s, nil
}
