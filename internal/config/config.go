// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Remote collaborators. The scenario service is required; the equity
	// engine is optional because scenarios normally ship with precomputed
	// equities.
	ScenarioAPIURL string `env:"SCENARIO_API_URL,required,notEmpty"`
	EquityAPIURL   string `env:"EQUITY_API_URL"`

	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	Cache CacheConfig

	// AdminToken guards the cache admin endpoints. Empty disables them.
	AdminToken string `env:"ADMIN_TOKEN"`
}

// CacheConfig tunes the scenario acquisition cache.
type CacheConfig struct {
	TTL            time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	TargetPerLevel int           `env:"CACHE_TARGET_PER_LEVEL" envDefault:"2"`
	Lookahead      int           `env:"CACHE_LOOKAHEAD" envDefault:"2"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the cache cannot run with.
func (c Config) Validate() error {
	if c.Cache.TargetPerLevel < 1 {
		return fmt.Errorf("CACHE_TARGET_PER_LEVEL must be at least 1, got %d", c.Cache.TargetPerLevel)
	}
	if c.Cache.Lookahead < 0 {
		return fmt.Errorf("CACHE_LOOKAHEAD must not be negative, got %d", c.Cache.Lookahead)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	return nil
}

// HasEquityAPI reports whether an equity engine is configured.
func (c Config) HasEquityAPI() bool {
	return c.EquityAPIURL != ""
}
