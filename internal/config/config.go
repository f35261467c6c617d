// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers a YAML file and FACEOFF_ env vars over those defaults.
// - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log records.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// CatalogPath points at the JSON list of {id, link} items.
	CatalogPath string `koanf:"catalog_path"`

	// CatalogLimit keeps only the first N catalog items when positive.
	CatalogLimit int `koanf:"catalog_limit"`

	// StaticDir is served at "/" when set.
	StaticDir string `koanf:"static_dir"`

	// StateBackend selects json, sqlite or postgres.
	StateBackend string `koanf:"state_backend"`

	// StatePath is the state file (json, sqlite) or DSN (postgres).
	StatePath string `koanf:"state_path"`

	// PersistQueueSize bounds the snapshot queue.
	PersistQueueSize int `koanf:"persist_queue_size"`

	// PersistWorkerCount sets the number of persistence workers.
	PersistWorkerCount int `koanf:"persist_worker_count"`

	// CheckpointSchedule is a cron spec for periodic full saves; empty disables it.
	CheckpointSchedule string `koanf:"checkpoint_schedule"`

	// KFactor and BaselineRating parameterize Elo.
	KFactor        float64 `koanf:"k_factor"`
	BaselineRating float64 `koanf:"baseline_rating"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// PairSeed makes pair selection reproducible when non-zero.
	PairSeed int64 `koanf:"pair_seed"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":3000",
		CatalogPath:         "image.json",
		CatalogLimit:        0,
		StaticDir:           "",
		StateBackend:        "json",
		StatePath:           "data.json",
		PersistQueueSize:    1024,
		PersistWorkerCount:  1,
		CheckpointSchedule:  "",
		KFactor:             32,
		BaselineRating:      1500,
		MaxLeaderboardLimit: 1000,
		PairSeed:            0,
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.CatalogPath) == "":
		return fmt.Errorf("%w: catalog_path must not be empty", ErrInvalidConfig)
	case c.CatalogLimit < 0:
		return fmt.Errorf("%w: catalog_limit must not be negative", ErrInvalidConfig)
	case strings.TrimSpace(c.StatePath) == "":
		return fmt.Errorf("%w: state_path must not be empty", ErrInvalidConfig)
	case c.PersistQueueSize < 1:
		return fmt.Errorf("%w: persist_queue_size must be positive", ErrInvalidConfig)
	case c.PersistWorkerCount < 1:
		return fmt.Errorf("%w: persist_worker_count must be positive", ErrInvalidConfig)
	case c.KFactor <= 0:
		return fmt.Errorf("%w: k_factor must be positive", ErrInvalidConfig)
	case c.BaselineRating <= 0:
		return fmt.Errorf("%w: baseline_rating must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}

	switch strings.ToLower(c.StateBackend) {
	case "json", "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, ErrUnknownBackend, c.StateBackend)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.CheckpointSchedule != "" {
		if _, err := cron.ParseStandard(c.CheckpointSchedule); err != nil {
			return fmt.Errorf("%w: %w: %w", ErrInvalidConfig, ErrInvalidSchedule, err)
		}
	}
	return nil
}
