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
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if MATINEE_CONFIG is set
//  3. env (prefix MATINEE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MATINEE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: MATINEE_ADDR, MATINEE_CACHE_TTL_SECONDS, ...
	// Underscores are preserved so env keys line up with koanf tags.
	envProvider := env.Provider("MATINEE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "matinee_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.FairnessPenalty < 0:
		return fmt.Errorf("%w: fairness_penalty must not be negative", ErrInvalidConfig)
	case c.DayStartHour < 0 || c.DayEndHour > 24 || c.DayEndHour <= c.DayStartHour:
		return fmt.Errorf("%w: day bounds must satisfy 0 <= start < end <= 24", ErrInvalidConfig)
	case c.CacheShards <= 0:
		return fmt.Errorf("%w: cache_shards must be positive", ErrInvalidConfig)
	case c.FetchConcurrency <= 0:
		return fmt.Errorf("%w: fetch_concurrency must be positive", ErrInvalidConfig)
	case c.MaxResultsCap <= 0:
		return fmt.Errorf("%w: max_results_cap must be positive", ErrInvalidConfig)
	}
	return nil
}
