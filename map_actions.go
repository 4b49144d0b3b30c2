package main

import (
	"fmt"
	"math"

	"osuparse/dotosu"
)

// CenterPos is the middle of the 512x384 playfield.
var CenterPos = Vec{X: 256, Y: 192}

type ActionKind uint8

const (
	ActionCircle ActionKind = iota
	ActionSliderHead
	ActionSliderTick
	ActionSliderRepeat
	ActionSliderEnd
	ActionSpinner
)

func (k ActionKind) String() string {
	switch k {
	case ActionCircle:
		return "circle"
	case ActionSliderHead:
		return "slider_head"
	case ActionSliderTick:
		return "slider_tick"
	case ActionSliderRepeat:
		return "slider_repeat"
	case ActionSliderEnd:
		return "slider_end"
	case ActionSpinner:
		return "spinner"
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

// Action is one judged event of the map: every action awards one combo.
type Action struct {
	Kind   ActionKind
	Pos    Vec
	Time   float64
	Radius float64
}

// sliderLeniency is how far before its nominal end a slider tail is judged.
const sliderLeniency = 36

// ConvertBeatmapToActions expands hit objects into judged events, with
// slider ticks, repeats and tails timed from the active timing points.
// Times are scaled by mods.Rate.
func ConvertBeatmapToActions(beatmap *dotosu.Beatmap, mods Modifiers) ([]Action, error) {
	if mods.Rate <= 0 {
		mods.Rate = 1
	}
	consts := GetBeatmapConstants(beatmap, mods)
	radius := consts.CircleRadius
	diff := beatmap.Difficulty

	actions := make([]Action, 0, len(beatmap.HitObjects))
	timingPoints := beatmap.TimingPoints
	tpIndex := 0
	var redLine *dotosu.TimingPoint
	sv := 1.0
	for _, object := range beatmap.HitObjects {
		for tpIndex < len(timingPoints) && (redLine == nil || timingPoints[tpIndex].Time <= object.StartTime()) {
			tp := &timingPoints[tpIndex]
			tpIndex++
			if tp.Uninherited {
				redLine = tp
				sv = 1
			} else if tp.BeatLength < 0 {
				sv = min(10, max(0.1, -100/tp.BeatLength))
			}
		}

		head := Vec{float64(object.Pos().X), float64(object.Pos().Y)}
		switch object := object.(type) {
		case dotosu.Circle:
			actions = append(actions, Action{Kind: ActionCircle, Pos: head, Time: float64(object.Time), Radius: radius})
		case dotosu.Spinner:
			actions = append(actions, Action{
				Kind:   ActionSpinner,
				Pos:    CenterPos,
				Time:   float64(object.Time+object.EndTime) / 2,
				Radius: 200,
			})
		case dotosu.Slider:
			if redLine == nil || redLine.BeatLength <= 0 {
				return nil, fmt.Errorf("slider at %d has no timing point", object.Time)
			}
			if diff.SliderMultiplier <= 0 || diff.SliderTickRate <= 0 {
				return nil, fmt.Errorf("slider at %d: non-positive slider multiplier or tick rate", object.Time)
			}
			actions = append(actions, Action{Kind: ActionSliderHead, Pos: head, Time: float64(object.Time), Radius: radius})
			actions = appendSliderActions(actions, object, redLine.BeatLength, sv, diff, radius)
		default:
			return nil, fmt.Errorf("unexpected hit object %T", object)
		}
	}

	for i := range actions {
		actions[i].Time /= mods.Rate
	}
	return actions, nil
}

func appendSliderActions(actions []Action, s dotosu.Slider, beatLength, sv float64, diff dotosu.Difficulty, radius float64) []Action {
	poly := SliderPath(s)
	visualLength := s.Length
	timeLength := visualLength / (diff.SliderMultiplier * 100 * sv) * beatLength
	if timeLength <= 0 || len(poly) < 2 {
		return append(actions, Action{Kind: ActionSliderEnd, Pos: PointAt(poly, 0), Time: float64(s.Time), Radius: radius * 2.4})
	}

	ticksFloat := timeLength / beatLength * diff.SliderTickRate
	ticks := max(0, int(math.Floor((timeLength-min(sliderLeniency, timeLength/2))/beatLength*diff.SliderTickRate)))
	tickLength := visualLength / ticksFloat
	tickTime := beatLength / diff.SliderTickRate
	slides := max(1, s.Slides)

	for i := 0; i < slides; i++ {
		for j := 0; j < ticks; j++ {
			var progress, t float64
			if i%2 == 0 {
				t = float64(s.Time) + float64(i)*timeLength + float64(j+1)*tickTime
				progress = float64(j+1) * tickLength
			} else {
				t = float64(s.Time) + float64(i+1)*timeLength + float64(j-ticks)*tickTime
				progress = float64(ticks-j) * tickLength
			}
			actions = append(actions, Action{Kind: ActionSliderTick, Pos: PointAt(poly, progress), Time: t, Radius: radius * 2.4})
		}

		t := float64(s.Time) + float64(i+1)*timeLength
		if i < slides-1 {
			pos := poly[0]
			if i%2 == 0 {
				pos = PointAt(poly, visualLength)
			}
			actions = append(actions, Action{Kind: ActionSliderRepeat, Pos: pos, Time: t, Radius: radius * 2.4})
			continue
		}
		lenient := min(sliderLeniency, timeLength/2)
		effective := timeLength - lenient
		progress := effective / timeLength * visualLength
		if i%2 == 1 {
			progress = (1 - effective/timeLength) * visualLength
		}
		actions = append(actions, Action{Kind: ActionSliderEnd, Pos: PointAt(poly, progress), Time: t - lenient, Radius: radius * 2.4})
	}
	return actions
}

// Timeline summarises the judged events of a map.
type Timeline struct {
	MaxCombo int     `json:"max_combo"`
	LengthMs float64 `json:"length_ms"`
}

func timelineOf(actions []Action) Timeline {
	if len(actions) == 0 {
		return Timeline{}
	}
	first, last := actions[0].Time, actions[0].Time
	for _, a := range actions[1:] {
		first = min(first, a.Time)
		last = max(last, a.Time)
	}
	return Timeline{MaxCombo: len(actions), LengthMs: last - first}
}
