package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"osuparse/dotosu"

	"gopkg.in/ini.v1"
)

const envPrefix = "OSUPARSE_"

type FetchConfig struct {
	BaseURL     string
	Session     string // osu_session cookie, needed for set downloads
	UserAgent   string
	RateLimit   int // requests per Cooldown
	Cooldown    time.Duration
	Concurrency int
	Timeout     time.Duration
	NoVideo     bool
}

type Config struct {
	Workers   int
	Limits    dotosu.Limits
	Fetch     FetchConfig
	IndexPath string
	LogLevel  slog.Level
}

func defaultConfig() Config {
	return Config{
		Workers: 4,
		Limits:  dotosu.DefaultLimits,
		Fetch: FetchConfig{
			BaseURL:     "https://osu.ppy.sh",
			UserAgent:   "osuparse/1.0",
			RateLimit:   30,
			Cooldown:    time.Minute,
			Concurrency: 2,
			Timeout:     2 * time.Minute,
			NoVideo:     true,
		},
		IndexPath: "beatmaps.db",
		LogLevel:  slog.LevelInfo,
	}
}

// loadConfig layers defaults, the INI file at path (if any) and OSUPARSE_*
// environment variables, in that order.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path != "" {
		f, err := ini.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := cfg.applyINI(f); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c *Config) applyINI(f *ini.File) error {
	p := f.Section("parse")
	c.Workers = p.Key("workers").MustInt(c.Workers)
	c.Limits.TimingPoints = p.Key("max_timing_points").MustInt(c.Limits.TimingPoints)
	c.Limits.HitObjects = p.Key("max_hit_objects").MustInt(c.Limits.HitObjects)
	c.Limits.CurvePoints = p.Key("max_curve_points").MustInt(c.Limits.CurvePoints)

	s := f.Section("fetch")
	c.Fetch.BaseURL = s.Key("base_url").MustString(c.Fetch.BaseURL)
	c.Fetch.Session = s.Key("session").MustString(c.Fetch.Session)
	c.Fetch.UserAgent = s.Key("user_agent").MustString(c.Fetch.UserAgent)
	c.Fetch.RateLimit = s.Key("rate_limit").MustInt(c.Fetch.RateLimit)
	c.Fetch.Cooldown = s.Key("cooldown").MustDuration(c.Fetch.Cooldown)
	c.Fetch.Concurrency = s.Key("concurrency").MustInt(c.Fetch.Concurrency)
	c.Fetch.Timeout = s.Key("timeout").MustDuration(c.Fetch.Timeout)
	c.Fetch.NoVideo = s.Key("no_video").MustBool(c.Fetch.NoVideo)

	c.IndexPath = f.Section("index").Key("path").MustString(c.IndexPath)

	if lvl := f.Section("log").Key("level").String(); lvl != "" {
		if err := c.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Workers = envInt("WORKERS", c.Workers)
	c.Limits.TimingPoints = envInt("MAX_TIMING_POINTS", c.Limits.TimingPoints)
	c.Limits.HitObjects = envInt("MAX_HIT_OBJECTS", c.Limits.HitObjects)
	c.Limits.CurvePoints = envInt("MAX_CURVE_POINTS", c.Limits.CurvePoints)
	c.Fetch.BaseURL = envString("BASE_URL", c.Fetch.BaseURL)
	c.Fetch.Session = envString("SESSION", c.Fetch.Session)
	c.Fetch.UserAgent = envString("USER_AGENT", c.Fetch.UserAgent)
	c.Fetch.RateLimit = envInt("RATE_LIMIT", c.Fetch.RateLimit)
	c.Fetch.Cooldown = envDuration("COOLDOWN", c.Fetch.Cooldown)
	c.Fetch.Concurrency = envInt("CONCURRENCY", c.Fetch.Concurrency)
	c.Fetch.Timeout = envDuration("TIMEOUT", c.Fetch.Timeout)
	c.Fetch.NoVideo = envBool("NO_VIDEO", c.Fetch.NoVideo)
	c.IndexPath = envString("INDEX", c.IndexPath)
	if lvl := envString("LOG_LEVEL", ""); lvl != "" {
		if err := c.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return fmt.Errorf("%sLOG_LEVEL: %w", envPrefix, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case c.Fetch.RateLimit < 1:
		return fmt.Errorf("rate_limit must be at least 1, got %d", c.Fetch.RateLimit)
	case c.Fetch.Concurrency < 1:
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Fetch.Concurrency)
	case c.Fetch.Cooldown <= 0:
		return fmt.Errorf("cooldown must be positive, got %s", c.Fetch.Cooldown)
	}
	return nil
}

func envString(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(name string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envBool(name string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(envPrefix + name)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
