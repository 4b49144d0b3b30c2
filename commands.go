package main

import (
	"cmp"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"osuparse/dotosu"
)

type summary struct {
	Source       string          `json:"source"`
	BeatmapID    int             `json:"beatmap_id,omitempty"`
	SetID        int             `json:"set_id,omitempty"`
	Title        string          `json:"title,omitempty"`
	Artist       string          `json:"artist,omitempty"`
	Creator      string          `json:"creator,omitempty"`
	Version      string          `json:"version,omitempty"`
	Mode         string          `json:"mode,omitempty"`
	TimingPoints int             `json:"timing_points"`
	Circles      int             `json:"circles"`
	Sliders      int             `json:"sliders"`
	Spinners     int             `json:"spinners"`
	Constants    *MapConstants   `json:"constants,omitempty"`
	Timeline     *Timeline       `json:"timeline,omitempty"`
	SliderPaths  []sliderSummary `json:"slider_paths,omitempty"`
	Error        string          `json:"error,omitempty"`
}

func summarize(source string, b *dotosu.Beatmap, mods Modifiers) summary {
	circles, sliders, spinners := b.Counts()
	consts := GetBeatmapConstants(b, mods)
	sum := summary{
		Source:       source,
		BeatmapID:    b.Metadata.BeatmapID,
		SetID:        b.Metadata.BeatmapSetID,
		Title:        b.Metadata.Title,
		Artist:       b.Metadata.Artist,
		Creator:      b.Metadata.Creator,
		Version:      b.Metadata.Version,
		Mode:         b.General.Mode.String(),
		TimingPoints: len(b.TimingPoints),
		Circles:      circles,
		Sliders:      sliders,
		Spinners:     spinners,
		Constants:    &consts,
	}
	if actions, err := ConvertBeatmapToActions(b, mods); err != nil {
		logger.Debug("no timeline", "source", source, "err", err)
	} else {
		tl := timelineOf(actions)
		sum.Timeline = &tl
	}
	return sum
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func cmdParse(ctx context.Context, cfg Config, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	var mods Modifiers
	fs.BoolVar(&mods.Hardrock, "hr", false, "apply Hard Rock to derived constants")
	fs.BoolVar(&mods.Easy, "ez", false, "apply Easy to derived constants")
	fs.Float64Var(&mods.Rate, "rate", 1, "playback rate for derived constants")
	withSliders := fs.Bool("sliders", false, "include flattened slider paths")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		return exitUsage
	}

	dec := &dotosu.Decoder{Limits: cfg.Limits}
	code := exitOK
	var out []summary
	for _, res := range parseAll(dec, fs.Args(), cfg.Workers) {
		if res.Err != nil {
			logger.Error("decode failed", "path", res.Path, "err", res.Err)
			out = append(out, summary{Source: res.Path, Error: describe(res.Err)})
			code = max(code, exitCode(res.Err))
			continue
		}
		sum := summarize(res.Path, res.Beatmap, mods)
		if *withSliders {
			sum.SliderPaths = sliderSummaries(res.Beatmap)
		}
		out = append(out, sum)
	}
	if err := writeJSON(stdout, out); err != nil {
		logger.Error("write output", "err", err)
		return exitUsage
	}
	return code
}

// findOsuFiles walks dir for *.osu files, sorted by path. Only an unreadable
// dir itself is an error; unreadable entries below it are logged and skipped.
func findOsuFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			logger.Warn("walk", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".osu") {
			paths = append(paths, path)
		}
		return nil
	})
	slices.Sort(paths)
	return paths, err
}

func cmdIndex(ctx context.Context, cfg Config, args []string, stdout io.Writer) int {
	if len(args) != 1 {
		return exitUsage
	}
	paths, err := findOsuFiles(args[0])
	if err != nil {
		logger.Error("walk", "dir", args[0], "err", err)
		return exitRead
	}

	ix, err := OpenIndex(ctx, cfg.IndexPath)
	if err != nil {
		logger.Error("open index", "err", err)
		return exitUsage
	}
	defer ix.Close()

	dec := &dotosu.Decoder{Limits: cfg.Limits}
	indexed, failed := 0, 0
	for _, res := range parseAll(dec, paths, cfg.Workers) {
		if res.Err != nil {
			failed++
			Fail(ctx, ix, failCategory(res.Err), res.Path, describe(res.Err))
			continue
		}
		if err := ix.Put(ctx, res.Path, res.Beatmap); err != nil {
			failed++
			Fail(ctx, ix, failIndex, res.Path, err.Error())
			continue
		}
		indexed++
	}
	logger.Info("indexed", "dir", args[0], "found", len(paths), "indexed", indexed, "failed", failed)
	fmt.Fprintf(stdout, "%d/%d .osu files indexed\n", indexed, len(paths))
	if failed > 0 {
		return exitInvalid
	}
	return exitOK
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("bad id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func cmdFetch(ctx context.Context, cfg Config, args []string, stdout io.Writer) int {
	ids, err := parseIDs(args)
	if err != nil || len(ids) == 0 {
		logger.Error("fetch needs beatmap ids", "err", err)
		return exitUsage
	}
	f, err := NewFetcher(cfg.Fetch, logger)
	if err != nil {
		logger.Error("fetcher", "err", err)
		return exitUsage
	}
	ix, err := OpenIndex(ctx, cfg.IndexPath)
	if err != nil {
		logger.Error("open index", "err", err)
		return exitUsage
	}
	defer ix.Close()

	dec := &dotosu.Decoder{Limits: cfg.Limits}
	code := exitOK
	var out []summary
	for _, id := range ids {
		ref := fmt.Sprintf("osu/%d", id)
		data, err := f.FetchOsu(ctx, id)
		if err != nil {
			Fail(ctx, ix, failFetch, ref, err.Error())
			code = max(code, exitRead)
			continue
		}
		b, err := dec.Parse(data)
		if err != nil {
			Fail(ctx, ix, failCategory(err), ref, describe(err))
			code = max(code, exitInvalid)
			continue
		}
		// files older than v10 carry no BeatmapID
		if b.Metadata.BeatmapID == 0 {
			b.Metadata.BeatmapID = id
		}
		if err := ix.Put(ctx, ref, b); err != nil {
			Fail(ctx, ix, failIndex, ref, err.Error())
			code = max(code, exitInvalid)
			continue
		}
		out = append(out, summarize(ref, b, Modifiers{Rate: 1}))
	}
	if err := writeJSON(stdout, out); err != nil {
		return exitUsage
	}
	return code
}

func cmdFetchSet(ctx context.Context, cfg Config, args []string, stdout io.Writer) int {
	ids, err := parseIDs(args)
	if err != nil || len(ids) == 0 {
		logger.Error("fetchset needs beatmap set ids", "err", err)
		return exitUsage
	}
	f, err := NewFetcher(cfg.Fetch, logger)
	if err != nil {
		logger.Error("fetcher", "err", err)
		return exitUsage
	}
	ix, err := OpenIndex(ctx, cfg.IndexPath)
	if err != nil {
		logger.Error("open index", "err", err)
		return exitUsage
	}
	defer ix.Close()

	dec := &dotosu.Decoder{Limits: cfg.Limits}
	code := exitOK
	var out []summary
	for _, setID := range ids {
		files, skipped, err := f.FetchSet(ctx, setID)
		for _, name := range skipped {
			Fail(ctx, ix, failBrokenZip, fmt.Sprintf("set/%d/%s", setID, name), "nested or directory member")
		}
		if err != nil {
			Fail(ctx, ix, failFetch, fmt.Sprintf("set/%d", setID), err.Error())
			code = max(code, exitRead)
			continue
		}
		names := make([]string, 0, len(files))
		for name := range files {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			ref := fmt.Sprintf("set/%d/%s", setID, name)
			b, err := dec.Parse(files[name])
			if err != nil {
				Fail(ctx, ix, failCategory(err), ref, describe(err))
				code = max(code, exitInvalid)
				continue
			}
			if err := ix.Put(ctx, ref, b); err != nil {
				Fail(ctx, ix, failIndex, ref, err.Error())
				code = max(code, exitInvalid)
				continue
			}
			out = append(out, summarize(ref, b, Modifiers{Rate: 1}))
		}
	}
	slices.SortFunc(out, func(a, b summary) int { return cmp.Compare(a.BeatmapID, b.BeatmapID) })
	if err := writeJSON(stdout, out); err != nil {
		return exitUsage
	}
	return code
}

func cmdShow(ctx context.Context, cfg Config, args []string, stdout io.Writer) int {
	ids, err := parseIDs(args)
	if err != nil || len(ids) != 1 {
		return exitUsage
	}
	ix, err := OpenIndex(ctx, cfg.IndexPath)
	if err != nil {
		logger.Error("open index", "err", err)
		return exitUsage
	}
	defer ix.Close()

	b, err := ix.Get(ctx, ids[0])
	if err != nil {
		logger.Error("show", "beatmap_id", ids[0], "err", err)
		return exitInvalid
	}
	if err := writeJSON(stdout, summarize(fmt.Sprintf("index/%d", ids[0]), b, Modifiers{Rate: 1})); err != nil {
		return exitUsage
	}
	return exitOK
}
