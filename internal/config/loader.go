package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if CREASE_CONFIG is set
//  3. env (prefix CREASE_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("CREASE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: CREASE_ADDR, CREASE_QUEUE_SIZE, ...
	// Map env keys like CREASE_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("CREASE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "crease_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.NameSimilarityThreshold < 0 || c.NameSimilarityThreshold > 1 {
		return fmt.Errorf("%w: name_similarity_threshold must be in [0,1]", ErrInvalidConfig)
	}
	if c.AmbiguityMargin < 0 || c.AmbiguityMargin > 1 {
		return fmt.Errorf("%w: ambiguity_margin must be in [0,1]", ErrInvalidConfig)
	}
	if c.MultiplierMin <= 0 || c.MultiplierMax < c.MultiplierMin {
		return fmt.Errorf("%w: multiplier bounds must satisfy 0 < min <= max", ErrInvalidConfig)
	}
	if c.DriftRetainWeight < 0 || c.DriftRetainWeight > 1 {
		return fmt.Errorf("%w: drift_retain_weight must be in [0,1]", ErrInvalidConfig)
	}
	if c.ScoringPeriodDays <= 0 {
		return fmt.Errorf("%w: scoring_period_days must be positive", ErrInvalidConfig)
	}
	return nil
}
