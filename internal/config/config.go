// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and BOUNTY_ env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// JournalQueueSize bounds the in-memory change queue.
	JournalQueueSize int `koanf:"journal_queue_size"`

	// JournalWorkerCount sets the number of journal workers.
	JournalWorkerCount int `koanf:"journal_worker_count"`

	// JournalSize bounds how many changes the journal retains.
	JournalSize int `koanf:"journal_size"`

	// DedupeSize sets the size of the request-idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps the leaderboard limit query parameter.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// OpeningBalance is the balance lazily-created bank accounts start with.
	OpeningBalance uint64 `koanf:"opening_balance"`

	// Accounts funds named bank accounts at startup.
	Accounts map[string]uint64 `koanf:"accounts"`

	// Assets maps collectible asset ids to their initial owners.
	Assets map[string]string `koanf:"assets"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		JournalQueueSize:    10_000,
		JournalWorkerCount:  runtime.NumCPU(),
		JournalSize:         10_000,
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		OpeningBalance:      0,
	}
}
