package main

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"osuparse/dotosu"
)

func init() {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testMap has one circle, one straight slider and one spinner.
const testMap = "osu file format v14\r\n" +
	"\r\n" +
	"[General]\r\n" +
	"AudioFilename: audio.mp3\r\n" +
	"Mode: 0\r\n" +
	"\r\n" +
	"[Metadata]\r\n" +
	"Title:Test\r\n" +
	"Artist:Artist\r\n" +
	"Creator:Mapper\r\n" +
	"Version:Normal\r\n" +
	"BeatmapID:42\r\n" +
	"BeatmapSetID:7\r\n" +
	"\r\n" +
	"[Difficulty]\r\n" +
	"HPDrainRate:5\r\n" +
	"CircleSize:4\r\n" +
	"OverallDifficulty:5\r\n" +
	"ApproachRate:5\r\n" +
	"SliderMultiplier:1\r\n" +
	"SliderTickRate:1\r\n" +
	"\r\n" +
	"[TimingPoints]\r\n" +
	"0,500,4,2,0,100,1,0\r\n" +
	"\r\n" +
	"[HitObjects]\r\n" +
	"100,100,1000,1,0\r\n" +
	"0,0,2000,2,0,L|200:0,1,200\r\n" +
	"256,192,4000,8,0,5000\r\n"

func mustParse(t *testing.T, data string) *dotosu.Beatmap {
	t.Helper()
	b, err := dotosu.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return b
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
