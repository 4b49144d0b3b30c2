package main

import "osuparse/dotosu"

// Modifiers are the difficulty-changing mods that affect derived constants.
type Modifiers struct {
	Rate     float64
	Hardrock bool
	Easy     bool
}

type MapConstants struct {
	Mods         Modifiers `json:"mods"`
	CircleRadius float64   `json:"circle_radius"`
	ApproachRate float64   `json:"approach_rate"`
	Preempt      float64   `json:"preempt_ms"`
	Window300    float64   `json:"window_300_ms"`
	Window100    float64   `json:"window_100_ms"`
	Window50     float64   `json:"window_50_ms"`
}

func GetBeatmapConstants(
	beatmap *dotosu.Beatmap,
	mods Modifiers,
) MapConstants {
	if mods.Rate <= 0 {
		mods.Rate = 1
	}

	cs := float64(beatmap.Difficulty.CircleSize)
	if mods.Hardrock {
		cs = min(cs*1.3, 10)
	}
	if mods.Easy {
		cs = cs / 2
	}
	circleRadius := 54.4 - 4.48*cs

	od := float64(beatmap.Difficulty.OverallDifficulty)
	ar := float64(beatmap.Difficulty.ApproachRate)
	if mods.Hardrock {
		od = min(10, od*1.4)
		ar = min(10, ar*1.4)
	}
	if mods.Easy {
		od = od / 2
		ar = ar / 2
	}

	preempt := ApproachRateToPreempt(ar) / mods.Rate
	ar = PreemptToAR(preempt)

	return MapConstants{
		Mods:         mods,
		CircleRadius: circleRadius,
		ApproachRate: ar,
		Preempt:      preempt,
		Window300:    (80 - 6*od) / mods.Rate, //+- this
		Window100:    (140 - 8*od) / mods.Rate,
		Window50:     (200 - 10*od) / mods.Rate,
	}
}

func ApproachRateToPreempt(ar float64) float64 {
	if ar < 5 {
		return 1200 + 120*(5-ar)
	} else if ar == 5 {
		return 1200
	} else {
		return 1200 - 150*(ar-5)
	}
}

func PreemptToAR(preempt float64) float64 {
	if preempt > 1200 {
		return 5 - (preempt-1200)/120
	} else if preempt == 1200 {
		return 5
	} else {
		return 5 + (1200-preempt)/150
	}
}
