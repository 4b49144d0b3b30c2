package main

import (
	"strings"
	"testing"
)

func TestConvertBeatmapToActions(t *testing.T) {
	b := mustParse(t, testMap)
	actions, err := ConvertBeatmapToActions(b, Modifiers{Rate: 1})
	if err != nil {
		t.Fatalf("ConvertBeatmapToActions: %v", err)
	}

	want := []struct {
		kind ActionKind
		time float64
		pos  Vec
	}{
		{ActionCircle, 1000, Vec{100, 100}},
		{ActionSliderHead, 2000, Vec{0, 0}},
		{ActionSliderTick, 2500, Vec{100, 0}},
		{ActionSliderEnd, 2964, Vec{192.8, 0}},
		{ActionSpinner, 4500, CenterPos},
	}
	if len(actions) != len(want) {
		t.Fatalf("got %d actions: %+v", len(actions), actions)
	}
	for i, w := range want {
		a := actions[i]
		if a.Kind != w.kind || !approx(a.Time, w.time) || !approx(a.Pos.X, w.pos.X) || !approx(a.Pos.Y, w.pos.Y) {
			t.Errorf("actions[%d] = %v at %v %v, want %v at %v %v", i, a.Kind, a.Time, a.Pos, w.kind, w.time, w.pos)
		}
	}

	tl := timelineOf(actions)
	if tl.MaxCombo != 5 || !approx(tl.LengthMs, 3500) {
		t.Errorf("timeline = %+v", tl)
	}
}

func TestConvertBeatmapToActions_Repeats(t *testing.T) {
	// two slides, slider velocity halved by an inherited point
	data := strings.Replace(testMap, "0,500,4,2,0,100,1,0\r\n", "0,500,4,2,0,100,1,0\r\n1500,-200,4,2,0,100,0,0\r\n", 1)
	data = strings.Replace(data, "0,0,2000,2,0,L|200:0,1,200", "0,0,2000,2,0,L|200:0,2,100", 1)
	b := mustParse(t, data)

	actions, err := ConvertBeatmapToActions(b, Modifiers{Rate: 1})
	if err != nil {
		t.Fatalf("ConvertBeatmapToActions: %v", err)
	}
	var kinds []ActionKind
	for _, a := range actions {
		kinds = append(kinds, a.Kind)
	}
	// each slide is 100px at 50px per beat: 1000ms with one tick
	wantKinds := []ActionKind{
		ActionCircle,
		ActionSliderHead, ActionSliderTick, ActionSliderRepeat, ActionSliderTick, ActionSliderEnd,
		ActionSpinner,
	}
	if len(kinds) != len(wantKinds) {
		t.Fatalf("kinds = %v, want %v", kinds, wantKinds)
	}
	for i := range wantKinds {
		if kinds[i] != wantKinds[i] {
			t.Fatalf("kinds = %v, want %v", kinds, wantKinds)
		}
	}
	repeat, end := actions[3], actions[5]
	if !approx(repeat.Time, 3000) || !approx(repeat.Pos.X, 100) {
		t.Errorf("repeat = %+v", repeat)
	}
	if !approx(end.Time, 4000-36) || !approx(end.Pos.X, 3.6) {
		t.Errorf("end = %+v", end)
	}
}

func TestConvertBeatmapToActions_Rate(t *testing.T) {
	b := mustParse(t, testMap)
	actions, err := ConvertBeatmapToActions(b, Modifiers{Rate: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !approx(actions[0].Time, 500) {
		t.Errorf("circle at %v, want 500", actions[0].Time)
	}
}

func TestConvertBeatmapToActions_NoTimingPoint(t *testing.T) {
	data := strings.Replace(testMap, "0,500,4,2,0,100,1,0\r\n", "", 1)
	b := mustParse(t, data)
	if _, err := ConvertBeatmapToActions(b, Modifiers{Rate: 1}); err == nil {
		t.Fatal("expected error for slider without timing point")
	}
}
