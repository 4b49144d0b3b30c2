package main

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenIndex(context.Background(), filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestIndex_PutGet(t *testing.T) {
	ctx := context.Background()
	ix := openTestIndex(t)
	b := mustParse(t, testMap)

	if err := ix.Put(ctx, "test.osu", b); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := ix.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, b) {
		t.Errorf("Get = %+v\nwant %+v", got, b)
	}

	// upsert keeps a single row
	b.Metadata.Version = "Hard"
	if err := ix.Put(ctx, "test.osu", b); err != nil {
		t.Fatalf("Put again: %v", err)
	}
	got, err = ix.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Metadata.Version != "Hard" {
		t.Errorf("Version = %q, want Hard", got.Metadata.Version)
	}
	n, _, err := ix.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1", n, err)
	}
	ids, err := ix.SetIDs(ctx, 7)
	if err != nil || !reflect.DeepEqual(ids, []int{42}) {
		t.Errorf("SetIDs = %v, %v", ids, err)
	}
}

func TestIndex_PutWithoutID(t *testing.T) {
	ix := openTestIndex(t)
	b := mustParse(t, strings.Replace(testMap, "BeatmapID:42\r\n", "", 1))
	if err := ix.Put(context.Background(), "old.osu", b); err == nil {
		t.Fatal("expected error indexing a map without BeatmapID")
	}
}

func TestIndex_GetMissing(t *testing.T) {
	ix := openTestIndex(t)
	_, err := ix.Get(context.Background(), 1)
	if !errors.Is(err, ErrNotIndexed) {
		t.Fatalf("err = %v, want ErrNotIndexed", err)
	}
}

func TestIndex_RecordFailure(t *testing.T) {
	ctx := context.Background()
	ix := openTestIndex(t)
	for n := 0; n < 3; n++ {
		if err := ix.RecordFailure(ctx, failInvalid, "a.osu", "bad"); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}
	if err := ix.RecordFailure(ctx, failTooLong, "a.osu", "long"); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	_, failures, err := ix.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if failures != 2 {
		t.Errorf("failures = %d, want 2", failures)
	}
}
