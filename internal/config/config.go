package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/ripple/internal/blobcache"
	"github.com/llehouerou/ripple/internal/playback"
	"github.com/llehouerou/ripple/internal/push"
)

const DefaultServerURL = "http://localhost:8000"

type Config struct {
	ServerURL string `koanf:"server_url"` // backend base URL
	PushURL   string `koanf:"push_url"`   // WebSocket URL (default: server_url + /ws)
	LogLevel  string `koanf:"log_level"`  // "debug", "info", "warn", "error" (default: "info")

	// Desktop notification on track change (default: true)
	Notifications *bool `koanf:"notifications"`
	// Media keys and desktop controls over MPRIS (default: true)
	MPRIS *bool `koanf:"mpris"`

	Cache    CacheConfig    `koanf:"cache"`
	Playback PlaybackConfig `koanf:"playback"`
	Sync     SyncConfig     `koanf:"sync"`
}

// CacheConfig holds the audio blob cache configuration.
type CacheConfig struct {
	Capacity int    `koanf:"capacity"` // max cached tracks (default: 20)
	Path     string `koanf:"path"`     // sqlite file (default: xdg cache dir)
	Prefetch *bool  `koanf:"prefetch"` // fetch queued tracks ahead (default: true)
}

// PlaybackConfig holds playback engine configuration.
type PlaybackConfig struct {
	Strategy       string `koanf:"strategy"`         // "auto", "direct", or "graph" (default: "auto")
	UserAgent      string `koanf:"user_agent"`       // sniffed by the auto strategy
	ReadyTimeoutMS int    `koanf:"ready_timeout_ms"` // default: 15000
	RetryDelayMS   int    `koanf:"retry_delay_ms"`   // default: 500
	SettleDelayMS  int    `koanf:"settle_delay_ms"`  // default: 100
}

// SyncConfig holds push channel configuration.
type SyncConfig struct {
	ReconnectDelayMS int `koanf:"reconnect_delay_ms"` // default: 3000
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given files in order, later files overriding earlier
// ones. Missing files are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		ServerURL: DefaultServerURL,
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Normalize URLs (remove trailing slash)
	cfg.ServerURL = strings.TrimSuffix(cfg.ServerURL, "/")
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.PushURL == "" {
		cfg.PushURL = push.WebSocketURL(cfg.ServerURL)
	}

	if cfg.Cache.Path != "" {
		cfg.Cache.Path = expandPath(cfg.Cache.Path)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/ripple/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ripple", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// NotificationsEnabled reports whether track change notifications are on.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// MPRISEnabled reports whether the MPRIS adapter is on.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS == nil || *c.MPRIS
}

// GetCacheConfig returns the cache configuration with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache
	if cfg.Capacity <= 0 {
		cfg.Capacity = blobcache.DefaultCapacity
	}
	if cfg.Prefetch == nil {
		enabled := true
		cfg.Prefetch = &enabled
	}
	return cfg
}

// GetPlaybackOptions returns the playback engine options with defaults applied.
func (c *Config) GetPlaybackOptions() playback.Options {
	p := c.Playback
	return playback.Options{
		Strategy:     playback.ParseStrategy(p.Strategy),
		UserAgent:    p.UserAgent,
		ReadyTimeout: millis(p.ReadyTimeoutMS, playback.DefaultReadyTimeout),
		RetryDelay:   millis(p.RetryDelayMS, playback.DefaultRetryDelay),
		SettleDelay:  millis(p.SettleDelayMS, playback.DefaultSettleDelay),
	}
}

// GetPushOptions returns the push channel options with defaults applied.
func (c *Config) GetPushOptions() push.Options {
	return push.Options{
		ReconnectDelay: millis(c.Sync.ReconnectDelayMS, push.DefaultReconnectDelay),
	}
}

func millis(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
