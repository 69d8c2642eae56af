// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New() initializer to build a Config with defaults.
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

	// QueueSize bounds the in-memory performance record queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the record-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// NameSimilarityThreshold is the minimum similarity for an identity match.
	NameSimilarityThreshold float64 `koanf:"name_similarity_threshold"`

	// AmbiguityMargin is the minimum lead the best candidate needs over the
	// runner-up before a match is accepted.
	AmbiguityMargin float64 `koanf:"ambiguity_margin"`

	// MultiplierMin and MultiplierMax bound every league multiplier.
	MultiplierMin float64 `koanf:"multiplier_min"`
	MultiplierMax float64 `koanf:"multiplier_max"`

	// DriftRetainWeight is the fraction of the old multiplier retained per
	// drift step.
	DriftRetainWeight float64 `koanf:"drift_retain_weight"`

	// ScoringPeriodDays sets the length of an aggregation period.
	ScoringPeriodDays int `koanf:"scoring_period_days"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	c := &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		QueueSize:               100_000,
		WorkerCount:             runtime.NumCPU() * 4,
		DedupeSize:              500_000,
		NameSimilarityThreshold: 0.85,
		AmbiguityMargin:         0.02,
		MultiplierMin:           0.69,
		MultiplierMax:           5.0,
		DriftRetainWeight:       0.85,
		ScoringPeriodDays:       7,
		MaxStandingsLimit:       100,
	}
	return c
}
