package dotosu

// MaxStringLen is the capacity of every string field in General and Metadata.
const MaxStringLen = 255

type section int

const (
	secNone section = iota
	secGeneral
	secMetadata
	secDifficulty
	secTimingPoints
	secHitObjects
)

func (s section) String() string {
	switch s {
	case secGeneral:
		return "General"
	case secMetadata:
		return "Metadata"
	case secDifficulty:
		return "Difficulty"
	case secTimingPoints:
		return "TimingPoints"
	case secHitObjects:
		return "HitObjects"
	default:
		return "none"
	}
}

// ---------- Beatmap model ----------

type Beatmap struct {
	FormatVersion int
	General       General
	Metadata      Metadata
	Difficulty    Difficulty

	TimingPoints []TimingPoint
	HitObjects   []HitObject
}

type Countdown int

const (
	CountdownNone Countdown = iota
	CountdownNormal
	CountdownHalf
	CountdownDouble
)

func (c Countdown) String() string {
	switch c {
	case CountdownNone:
		return "none"
	case CountdownNormal:
		return "normal"
	case CountdownHalf:
		return "half"
	case CountdownDouble:
		return "double"
	default:
		return "unknown"
	}
}

type GameMode int

const (
	ModeOsu GameMode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

func (m GameMode) String() string {
	switch m {
	case ModeOsu:
		return "osu"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "fruits"
	case ModeMania:
		return "mania"
	default:
		return "unknown"
	}
}

type General struct {
	AudioFilename   string
	AudioLeadIn     int
	Countdown       Countdown
	StackLeniency   float32
	Mode            GameMode
	CountdownOffset int
}

type Metadata struct {
	Title, Artist           string
	Creator, Version        string
	BeatmapID, BeatmapSetID int
}

type Difficulty struct {
	HPDrainRate, CircleSize, OverallDifficulty, ApproachRate float32
	SliderMultiplier, SliderTickRate                         float64
}

// TimingPoint keeps only the timing columns; sample set, index and volume are dropped.
type TimingPoint struct {
	Time        int
	BeatLength  float64
	Meter       int
	Uninherited bool
}

// ---------- HitObject variants ----------

type ObjectKind uint8

const (
	KindCircle ObjectKind = iota
	KindSlider
	KindSpinner
)

func (k ObjectKind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSlider:
		return "slider"
	case KindSpinner:
		return "spinner"
	default:
		return "unknown"
	}
}

type HitObjectTypeFlags int

const (
	TypeCircle     HitObjectTypeFlags = 1 << iota // 1
	TypeSlider                                    // 2
	TypeNewCombo                                  // 4
	TypeSpinner                                   // 8
	TypeComboSkip1                                // 16
	TypeComboSkip2                                // 32
	TypeComboSkip3                                // 64
	TypeHold       HitObjectTypeFlags = 1 << 7    // 128
)

type Vec2 struct{ X, Y int }

type CurveType uint8

const (
	CurveBezier CurveType = iota
	CurveCatmull
	CurveLinear
	CurvePerfect
)

// curveTypeOf maps the curve letter of a slider line.
func curveTypeOf(b byte) (CurveType, bool) {
	switch b {
	case 'B':
		return CurveBezier, true
	case 'C':
		return CurveCatmull, true
	case 'L':
		return CurveLinear, true
	case 'P':
		return CurvePerfect, true
	}
	return 0, false
}

// Letter is the single character used for the curve type in the file.
func (c CurveType) Letter() byte {
	switch c {
	case CurveCatmull:
		return 'C'
	case CurveLinear:
		return 'L'
	case CurvePerfect:
		return 'P'
	default:
		return 'B'
	}
}

func (c CurveType) String() string {
	switch c {
	case CurveBezier:
		return "bezier"
	case CurveCatmull:
		return "catmull"
	case CurveLinear:
		return "linear"
	case CurvePerfect:
		return "perfect"
	default:
		return "unknown"
	}
}

// HitObject is implemented only by Circle, Slider and Spinner.
type HitObject interface {
	Kind() ObjectKind
	StartTime() int
	NewCombo() bool
	Flags() HitObjectTypeFlags
	Pos() Vec2
}

type BaseHO struct {
	PosXY Vec2
	Time  int
	Type  HitObjectTypeFlags
}

func (b BaseHO) StartTime() int            { return b.Time }
func (b BaseHO) NewCombo() bool            { return (b.Type & TypeNewCombo) != 0 }
func (b BaseHO) Flags() HitObjectTypeFlags { return b.Type }
func (b BaseHO) Pos() Vec2                 { return b.PosXY }

type Circle struct{ BaseHO }

func (Circle) Kind() ObjectKind { return KindCircle }

type Slider struct {
	BaseHO
	CurveType   CurveType
	CurvePoints []Vec2 // control points after the head, in file order
	Slides      int
	Length      float64
}

func (Slider) Kind() ObjectKind { return KindSlider }

type Spinner struct {
	BaseHO
	EndTime int
}

func (Spinner) Kind() ObjectKind { return KindSpinner }

// Release drops every list owned by b: timing points, hit objects and the
// curve points of each slider. It is safe on a zero, partially built or
// already released Beatmap.
func (b *Beatmap) Release() {
	if b == nil {
		return
	}
	// a Slider is stored by value, so clearing its slot drops its curve points
	clear(b.HitObjects)
	b.HitObjects = nil
	b.TimingPoints = nil
}

// Counts returns the number of circles, sliders and spinners.
func (b *Beatmap) Counts() (circles, sliders, spinners int) {
	for _, ho := range b.HitObjects {
		switch ho.Kind() {
		case KindCircle:
			circles++
		case KindSlider:
			sliders++
		case KindSpinner:
			spinners++
		}
	}
	return circles, sliders, spinners
}
