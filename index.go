package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"osuparse/dotosu"

	"github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS beatmaps (
	beatmap_id    INTEGER PRIMARY KEY,
	set_id        INTEGER NOT NULL,
	title         TEXT NOT NULL,
	artist        TEXT NOT NULL,
	creator       TEXT NOT NULL,
	version       TEXT NOT NULL,
	mode          INTEGER NOT NULL,
	timing_points INTEGER NOT NULL,
	circles       INTEGER NOT NULL,
	sliders       INTEGER NOT NULL,
	spinners      INTEGER NOT NULL,
	circle_radius REAL NOT NULL,
	preempt       REAL NOT NULL,
	source        TEXT NOT NULL,
	snapshot      BLOB NOT NULL,
	indexed_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS beatmaps_set ON beatmaps(set_id);
CREATE TABLE IF NOT EXISTS failures (
	category TEXT NOT NULL,
	ref      TEXT NOT NULL,
	reason   TEXT NOT NULL,
	at       INTEGER NOT NULL,
	UNIQUE(category, ref)
);
`

var ErrNotIndexed = errors.New("beatmap not indexed")

// Index stores parsed beatmaps in SQLite, keyed by beatmap ID.
type Index struct {
	db *sql.DB
}

func OpenIndex(ctx context.Context, path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	// one writer; sqlite serialises anyway
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema in %s: %w", path, err)
	}
	return &Index{db: db}, nil
}

func (ix *Index) Close() error { return ix.db.Close() }

// Put upserts b. Maps without a beatmap ID cannot be keyed and are rejected.
func (ix *Index) Put(ctx context.Context, source string, b *dotosu.Beatmap) error {
	id := b.Metadata.BeatmapID
	if id <= 0 {
		return fmt.Errorf("%s: no BeatmapID to index under", source)
	}
	snap, err := b.MarshalBinary()
	if err != nil {
		return err
	}
	consts := GetBeatmapConstants(b, Modifiers{Rate: 1})
	circles, sliders, spinners := b.Counts()

	_, err = ix.db.ExecContext(ctx, `
INSERT INTO beatmaps (beatmap_id, set_id, title, artist, creator, version, mode,
	timing_points, circles, sliders, spinners, circle_radius, preempt, source, snapshot, indexed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(beatmap_id) DO UPDATE SET
	set_id = excluded.set_id, title = excluded.title, artist = excluded.artist,
	creator = excluded.creator, version = excluded.version, mode = excluded.mode,
	timing_points = excluded.timing_points, circles = excluded.circles,
	sliders = excluded.sliders, spinners = excluded.spinners,
	circle_radius = excluded.circle_radius, preempt = excluded.preempt,
	source = excluded.source, snapshot = excluded.snapshot, indexed_at = excluded.indexed_at`,
		id, b.Metadata.BeatmapSetID, b.Metadata.Title, b.Metadata.Artist, b.Metadata.Creator,
		b.Metadata.Version, int(b.General.Mode), len(b.TimingPoints), circles, sliders, spinners,
		consts.CircleRadius, consts.Preempt, source, snap, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("index beatmap %d: %w", id, describeSQLite(err))
	}
	return nil
}

// Get decodes the stored snapshot of a beatmap.
func (ix *Index) Get(ctx context.Context, beatmapID int) (*dotosu.Beatmap, error) {
	var snap []byte
	err := ix.db.QueryRowContext(ctx, `SELECT snapshot FROM beatmaps WHERE beatmap_id = ?`, beatmapID).Scan(&snap)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("beatmap %d: %w", beatmapID, ErrNotIndexed)
	}
	if err != nil {
		return nil, fmt.Errorf("load beatmap %d: %w", beatmapID, describeSQLite(err))
	}
	var b dotosu.Beatmap
	if err := b.UnmarshalBinary(snap); err != nil {
		return nil, fmt.Errorf("beatmap %d: %w", beatmapID, err)
	}
	return &b, nil
}

// SetIDs returns the beatmap IDs indexed for a set, in ascending order.
func (ix *Index) SetIDs(ctx context.Context, setID int) ([]int, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT beatmap_id FROM beatmaps WHERE set_id = ? ORDER BY beatmap_id`, setID)
	if err != nil {
		return nil, describeSQLite(err)
	}
	defer rows.Close()
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (ix *Index) Count(ctx context.Context) (beatmaps, failures int, err error) {
	err = ix.db.QueryRowContext(ctx, `SELECT (SELECT COUNT(*) FROM beatmaps), (SELECT COUNT(*) FROM failures)`).Scan(&beatmaps, &failures)
	return beatmaps, failures, err
}

// RecordFailure keeps the first failure per category and ref.
func (ix *Index) RecordFailure(ctx context.Context, category, ref, reason string) error {
	_, err := ix.db.ExecContext(ctx,
		`INSERT INTO failures (category, ref, reason, at) VALUES (?, ?, ?, ?)`,
		category, ref, reason, time.Now().Unix())
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return nil
	}
	if err != nil {
		return fmt.Errorf("record failure %s/%s: %w", category, ref, describeSQLite(err))
	}
	return nil
}

func describeSQLite(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
		return fmt.Errorf("index is locked by another process: %w", err)
	}
	return err
}
