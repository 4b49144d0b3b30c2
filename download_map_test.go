package main

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher(t *testing.T, url string) *Fetcher {
	t.Helper()
	f, err := NewFetcher(FetchConfig{
		BaseURL:     url,
		Session:     "secret",
		UserAgent:   "osuparse-test",
		RateLimit:   100,
		Cooldown:    time.Millisecond,
		Concurrency: 2,
		Timeout:     5 * time.Second,
		NoVideo:     true,
	}, logger)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return f
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFetchOsu(t *testing.T) {
	var gotPath, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.UserAgent()
		w.Write([]byte(testMap))
	}))
	defer srv.Close()

	data, err := testFetcher(t, srv.URL).FetchOsu(context.Background(), 42)
	if err != nil {
		t.Fatalf("FetchOsu: %v", err)
	}
	if string(data) != testMap {
		t.Errorf("body = %q", data)
	}
	if gotPath != "/osu/42" || gotAgent != "osuparse-test" {
		t.Errorf("path = %q agent = %q", gotPath, gotAgent)
	}
}

func TestFetchOsu_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"empty", func(w http.ResponseWriter, r *http.Request) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			if _, err := testFetcher(t, srv.URL).FetchOsu(context.Background(), 1); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFetchOsu_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(testMap))
	}))
	defer srv.Close()

	if _, err := testFetcher(t, srv.URL).FetchOsu(context.Background(), 42); err != nil {
		t.Fatalf("FetchOsu: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestFetchSet(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"a [Easy].osu":     "easy",
		"a [Hard].osu":     "hard",
		"audio.mp3":        "mp3",
		"nested/b.osu":     "nested",
		"storyboard.osb":   "sb",
		"UPPER [Wild].OSU": "wild",
	})
	var gotQuery, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/beatmapsets/7/download" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		if c, err := r.Cookie("osu_session"); err == nil {
			gotCookie = c.Value
		}
		w.Write(archive)
	}))
	defer srv.Close()

	files, skipped, err := testFetcher(t, srv.URL).FetchSet(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchSet: %v", err)
	}
	want := map[string][]byte{
		"a [Easy].osu":     []byte("easy"),
		"a [Hard].osu":     []byte("hard"),
		"UPPER [Wild].OSU": []byte("wild"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v", files)
	}
	if !reflect.DeepEqual(skipped, []string{"nested/b.osu"}) {
		t.Errorf("skipped = %v", skipped)
	}
	if gotQuery != "noVideo=1" {
		t.Errorf("query = %q, want noVideo=1", gotQuery)
	}
	if gotCookie != "secret" {
		t.Errorf("osu_session = %q, want secret", gotCookie)
	}
}

func TestExtractOsuFiles_NoMaps(t *testing.T) {
	archive := buildZip(t, map[string]string{"audio.mp3": "mp3"})
	if _, _, err := extractOsuFiles(1, archive); err == nil {
		t.Fatal("expected error for archive without .osu files")
	}
	if _, _, err := extractOsuFiles(1, []byte("not a zip")); err == nil || !strings.Contains(err.Error(), "zip") {
		t.Fatalf("err = %v, want zip error", err)
	}
}
