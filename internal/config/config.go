package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire"
)

const (
	DefaultURL      = "ws://localhost:8000"
	DefaultLogLevel = "warn"
)

// Config is the CLI configuration: defaults, then the config file, then the
// environment. Command flags are applied last by the caller.
type Config struct {
	URL            string // websocket base
	APIURL         string // REST base; derived from URL when empty
	LogLevel       string
	ReconnectDelay time.Duration
	PollInterval   time.Duration
	FeedCapacity   int
}

type fileConfig struct {
	URL            string `toml:"url"`
	APIURL         string `toml:"api_url"`
	LogLevel       string `toml:"log_level"`
	ReconnectDelay string `toml:"reconnect_delay"`
	PollInterval   string `toml:"poll_interval"`
	FeedCapacity   int    `toml:"feed_capacity"`
}

func Load() (*Config, error) {
	return LoadFile(configFilePath())
}

// LoadFile loads path, which may be empty or missing.
func LoadFile(path string) (*Config, error) {
	d := debatewire.DefaultConfig()
	cfg := &Config{
		URL:            DefaultURL,
		LogLevel:       DefaultLogLevel,
		ReconnectDelay: d.ReconnectDelay,
		PollInterval:   d.PollInterval,
		FeedCapacity:   d.FeedCapacity,
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			var fc fileConfig
			if _, err := toml.DecodeFile(path, &fc); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
			if err := cfg.merge(fc); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if cfg.APIURL == "" {
		cfg.APIURL = APIBase(cfg.URL)
	}
	return cfg, nil
}

func (cfg *Config) merge(fc fileConfig) error {
	if fc.URL != "" {
		cfg.URL = fc.URL
	}
	if fc.APIURL != "" {
		cfg.APIURL = fc.APIURL
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.FeedCapacity > 0 {
		cfg.FeedCapacity = fc.FeedCapacity
	}
	if fc.ReconnectDelay != "" {
		d, err := time.ParseDuration(fc.ReconnectDelay)
		if err != nil {
			return fmt.Errorf("reconnect_delay: %w", err)
		}
		cfg.ReconnectDelay = d
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEBATEWIRE_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("DEBATEWIRE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("DEBATEWIRE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// SDK returns the connection settings for debatewire.
func (cfg *Config) SDK() debatewire.Config {
	c := debatewire.DefaultConfig()
	c.URL = cfg.URL
	c.ReconnectDelay = cfg.ReconnectDelay
	c.PollInterval = cfg.PollInterval
	c.FeedCapacity = cfg.FeedCapacity
	return c
}

// SlogLevel parses LogLevel, falling back to warn.
func (cfg *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// APIBase maps a websocket base to the REST base on the same host.
func APIBase(u string) string {
	switch {
	case strings.HasPrefix(u, "wss://"):
		return "https://" + strings.TrimPrefix(u, "wss://")
	case strings.HasPrefix(u, "ws://"):
		return "http://" + strings.TrimPrefix(u, "ws://")
	default:
		return u
	}
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "debatewire")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "debatewire")
	} else {
		return ""
	}
	return filepath.Join(configDir, "config.toml")
}
