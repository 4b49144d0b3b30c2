package main

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/levigross/grequests"
	"golang.org/x/net/publicsuffix"
)

const maxFetchAttempts = 3

var errRateLimited = errors.New("rate limited by server")

// Fetcher downloads .osu files and beatmap set archives.
type Fetcher struct {
	cfg      FetchConfig
	throttle *throttle
	jar      http.CookieJar
	log      *slog.Logger
}

type setDownloadParams struct {
	NoVideo bool `url:"noVideo,int,omitempty"`
}

func NewFetcher(cfg FetchConfig, log *slog.Logger) (*Fetcher, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("base url %q: %w", cfg.BaseURL, err)
	}
	if cfg.Session != "" {
		jar.SetCookies(base, []*http.Cookie{{Name: "osu_session", Value: cfg.Session}})
	}
	return &Fetcher{
		cfg:      cfg,
		throttle: newThrottle(cfg.RateLimit, cfg.Cooldown, cfg.Concurrency),
		jar:      jar,
		log:      log,
	}, nil
}

// FetchOsu downloads the raw .osu file of one difficulty.
func (f *Fetcher) FetchOsu(ctx context.Context, beatmapID int) ([]byte, error) {
	data, err := f.getWithRetry(ctx, fmt.Sprintf("/osu/%d", beatmapID), nil)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("beatmap %d: empty response", beatmapID)
	}
	return data, nil
}

// FetchSet downloads a beatmap set archive and returns its top level .osu
// members. Members that are directories or nested paths are returned in skipped.
func (f *Fetcher) FetchSet(ctx context.Context, setID int) (osuFiles map[string][]byte, skipped []string, err error) {
	data, err := f.getWithRetry(ctx, fmt.Sprintf("/beatmapsets/%d/download", setID), setDownloadParams{NoVideo: f.cfg.NoVideo})
	if err != nil {
		return nil, nil, err
	}
	return extractOsuFiles(setID, data)
}

func extractOsuFiles(setID int, data []byte) (map[string][]byte, []string, error) {
	// Treat the .osz file as a ZIP file
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("error opening osz (zip) id:%d err: %w", setID, err)
	}

	osuFiles := make(map[string][]byte)
	var skipped []string
	for _, file := range zipReader.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".osu") {
			continue
		}
		if file.FileInfo().IsDir() || strings.ContainsAny(file.Name, "/\\") {
			skipped = append(skipped, file.Name)
			continue
		}
		contents, err := readZipMember(file)
		if err != nil {
			return nil, nil, fmt.Errorf("error reading .osu file %s: %w", file.Name, err)
		}
		osuFiles[file.Name] = contents
	}
	if len(osuFiles) == 0 {
		return nil, skipped, fmt.Errorf("set %d: no .osu files in archive", setID)
	}
	return osuFiles, skipped, nil
}

func readZipMember(file *zip.File) ([]byte, error) {
	r, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (f *Fetcher) getWithRetry(ctx context.Context, path string, params any) ([]byte, error) {
	var err error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		var data []byte
		data, err = f.get(ctx, path, params)
		if !errors.Is(err, errRateLimited) {
			return data, err
		}
		wait := time.Duration(attempt) * f.cfg.Cooldown
		f.log.Warn("rate limited, backing off", "path", path, "attempt", attempt, "wait", wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, err
}

func (f *Fetcher) get(ctx context.Context, path string, params any) ([]byte, error) {
	u := strings.TrimRight(f.cfg.BaseURL, "/") + path
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return nil, fmt.Errorf("encode query: %w", err)
		}
		if enc := v.Encode(); enc != "" {
			u += "?" + enc
		}
	}

	done, err := f.throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	f.log.Debug("fetching", "url", u)
	resp, err := grequests.Get(u, grequests.FromRequestOptions(&grequests.RequestOptions{
		Context:        ctx,
		UserAgent:      f.cfg.UserAgent,
		UseCookieJar:   true,
		CookieJar:      f.jar,
		RequestTimeout: f.cfg.Timeout,
		Headers:        map[string]string{"Accept": "*/*"},
	}))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Close()

	body := resp.Bytes()
	if resp.StatusCode == http.StatusTooManyRequests || bytes.Contains(body, []byte("Slow down, play more.")) {
		return nil, fmt.Errorf("GET %s: %w", u, errRateLimited)
	}
	if !resp.Ok {
		return nil, fmt.Errorf("GET %s: received non-2xx response %d: %.200s", u, resp.StatusCode, body)
	}
	return body, nil
}
