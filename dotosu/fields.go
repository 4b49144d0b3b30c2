package dotosu

// key matches lit at the start of the line when it is followed by ':' or a
// blank, so "Title" does not match "TitleUnicode". On a match the cursor is
// moved past lit.
func (c *cursor) key(lit string) bool {
	if !c.hasPrefix(lit) {
		return false
	}
	switch c.peekAt(len(lit)) {
	case ':', ' ', '\t':
	default:
		return false
	}
	c.pos += len(lit)
	c.field = lit
	return true
}

func (c *cursor) colon() error {
	c.skipSpace()
	if err := c.expect(":"); err != nil {
		return err
	}
	c.skipSpace()
	return nil
}

func (c *cursor) intValue() (int, error) {
	if err := c.colon(); err != nil {
		return 0, err
	}
	return c.readInt()
}

func (c *cursor) floatValue() (float64, error) {
	if err := c.colon(); err != nil {
		return 0, err
	}
	return c.readFloat()
}

// stringValue copies the rest of the line. Content longer than MaxStringLen
// fails the parse instead of being truncated.
func (c *cursor) stringValue(f Field) (string, error) {
	if err := c.colon(); err != nil {
		return "", err
	}
	end := c.lineEnd()
	if n := end - c.pos; n > MaxStringLen {
		return "", &FieldTooLongError{Field: f, Len: n}
	}
	s := string(c.data[c.pos:end])
	c.pos = end
	return s, nil
}

func (c *cursor) setInt(dst *int) error {
	v, err := c.intValue()
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func (c *cursor) setFloat32(dst *float32) error {
	v, err := c.floatValue()
	if err != nil {
		return err
	}
	*dst = float32(v)
	return nil
}

func (c *cursor) setFloat64(dst *float64) error {
	v, err := c.floatValue()
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func (c *cursor) setString(f Field, dst *string) error {
	v, err := c.stringValue(f)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func generalField(c *cursor, g *General) error {
	switch c.peek() {
	case 'A':
		switch {
		case c.key("AudioFilename"):
			return c.setString(FieldAudioFilename, &g.AudioFilename)
		case c.key("AudioLeadIn"):
			return c.setInt(&g.AudioLeadIn)
		}
	case 'C':
		switch {
		case c.key("Countdown"):
			v, err := c.intValue()
			g.Countdown = Countdown(v)
			return err
		case c.key("CountdownOffset"):
			return c.setInt(&g.CountdownOffset)
		}
	case 'S':
		// StackLe[n]iency; no other General key has 'n' there
		if c.peekAt(7) == 'n' && c.key("StackLeniency") {
			return c.setFloat32(&g.StackLeniency)
		}
	case 'M':
		if c.key("Mode") {
			v, err := c.intValue()
			g.Mode = GameMode(v)
			return err
		}
	}
	return nil
}

func metadataField(c *cursor, m *Metadata) error {
	switch c.peek() {
	case 'T':
		if c.key("Title") {
			return c.setString(FieldTitle, &m.Title)
		}
	case 'A':
		if c.key("Artist") {
			return c.setString(FieldArtist, &m.Artist)
		}
	case 'C':
		if c.key("Creator") {
			return c.setString(FieldCreator, &m.Creator)
		}
	case 'V':
		if c.key("Version") {
			return c.setString(FieldVersion, &m.Version)
		}
	case 'B':
		switch {
		case c.key("BeatmapID"):
			return c.setInt(&m.BeatmapID)
		case c.key("BeatmapSetID"):
			return c.setInt(&m.BeatmapSetID)
		}
	}
	return nil
}

func difficultyField(c *cursor, d *Difficulty) error {
	switch c.peek() {
	case 'H':
		if c.key("HPDrainRate") {
			return c.setFloat32(&d.HPDrainRate)
		}
	case 'C':
		if c.key("CircleSize") {
			return c.setFloat32(&d.CircleSize)
		}
	case 'O':
		if c.key("OverallDifficulty") {
			return c.setFloat32(&d.OverallDifficulty)
		}
	case 'A':
		if c.key("ApproachRate") {
			return c.setFloat32(&d.ApproachRate)
		}
	case 'S':
		switch {
		case c.key("SliderMultiplier"):
			return c.setFloat64(&d.SliderMultiplier)
		case c.key("SliderTickRate"):
			return c.setFloat64(&d.SliderTickRate)
		}
	}
	return nil
}
