package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the process configuration. SyncTimeout is zero unless set, so
// the remote fetch runs without a deadline.
type Config struct {
	Env             string
	ListenAddr      string
	DatabaseURL     string
	MapboxToken     string
	LogLevel        string
	LogFormat       string
	SyncTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// ErrNoDatabase is returned by Load when DATABASE_URL is empty. The server
// treats it as "remote sync disabled"; the seed command treats it as fatal.
var ErrNoDatabase = errors.New("DATABASE_URL not set")

// fileConfig mirrors the optional TOML file named by CERTMAP_CONFIG.
type fileConfig struct {
	Env         string `toml:"env"`
	ListenAddr  string `toml:"listen_addr"`
	DatabaseURL string `toml:"database_url"`
	MapboxToken string `toml:"mapbox_access_token"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	SyncTimeout string `toml:"sync_timeout"`
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Load reads defaults, then the optional TOML file, then environment
// variables, each layer overriding the previous one.
func Load() (Config, error) {
	cfg := Config{
		Env:             "development",
		ListenAddr:      ":8080",
		LogLevel:        "info",
		LogFormat:       "text",
		ShutdownTimeout: 10 * time.Second,
	}

	if path := getenv("CERTMAP_CONFIG", ""); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	cfg.Env = getenv("APP_ENV", cfg.Env)
	cfg.ListenAddr = getenv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MapboxToken = getenv("MAPBOX_ACCESS_TOKEN", cfg.MapboxToken)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("LOG_FORMAT", cfg.LogFormat)
	timeout, err := getenvDuration("SYNC_TIMEOUT", cfg.SyncTimeout)
	if err != nil {
		return cfg, err
	}
	cfg.SyncTimeout = timeout

	if cfg.DatabaseURL == "" {
		return cfg, ErrNoDatabase
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&cfg.Env, raw.Env)
	set(&cfg.ListenAddr, raw.ListenAddr)
	set(&cfg.DatabaseURL, raw.DatabaseURL)
	set(&cfg.MapboxToken, raw.MapboxToken)
	set(&cfg.LogLevel, raw.LogLevel)
	set(&cfg.LogFormat, raw.LogFormat)
	if v := strings.TrimSpace(raw.SyncTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("parse config: sync_timeout: %w", err)
		}
		cfg.SyncTimeout = d
	}
	return nil
}

// parseTimeout accepts a Go duration; zero disables the timeout.
func parseTimeout(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", v)
	}
	return d, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := parseTimeout(v)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
