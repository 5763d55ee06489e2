// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
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

	// ResultQueueSize bounds the in-memory result queue.
	ResultQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of result-processing workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// DropWorstCount removes each member's N lowest-performing contests
	// from the effective standings totals.
	DropWorstCount int `koanf:"drop_worst_count"`

	// TeamSize sets the fixed number of members per formed team.
	TeamSize int `koanf:"team_size"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	// ContestWeights maps contest ids to their per-solve score weights,
	// used when a submission carries no precomputed score.
	ContestWeights map[string]float64 `koanf:"contest_weights"`

	// DefaultContestWeight is used for contests without an entry.
	DefaultContestWeight float64 `koanf:"default_contest_weight"`

	// PenaltyWeight is the multiplier applied to time penalty when
	// computing a contest score.
	PenaltyWeight float64 `koanf:"penalty_weight"`
}

// New creates a Config with club-scale defaults.
func New() *Config {
	c := &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		ResultQueueSize:      10_000,
		WorkerCount:          runtime.NumCPU() * 2,
		DedupeSize:           50_000,
		DropWorstCount:       1,
		TeamSize:             3,
		MaxStandingsLimit:    500,
		ContestWeights:       map[string]float64{},
		DefaultContestWeight: 100,
		PenaltyWeight:        1,
	}
	return c
}
