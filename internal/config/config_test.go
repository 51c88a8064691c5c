package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("SCENARIO_API_URL", "http://localhost:8081")
	t.Setenv("EQUITY_API_URL", "http://localhost:8082")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CACHE_TARGET_PER_LEVEL", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ScenarioAPIURL != "http://localhost:8081" {
		t.Errorf("ScenarioAPIURL = %q", cfg.ScenarioAPIURL)
	}
	if !cfg.HasEquityAPI() {
		t.Error("expected equity API to be configured")
	}
	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("Cache.TTL = %s, want 90s", cfg.Cache.TTL)
	}
	if cfg.Cache.TargetPerLevel != 3 {
		t.Errorf("Cache.TargetPerLevel = %d, want 3", cfg.Cache.TargetPerLevel)
	}
	// defaults
	if cfg.Port != "8080" {
		t.Errorf("Port default = %q, want 8080", cfg.Port)
	}
	if cfg.Cache.Lookahead != 2 {
		t.Errorf("Cache.Lookahead default = %d, want 2", cfg.Cache.Lookahead)
	}
}

func TestLoadRequiresScenarioURL(t *testing.T) {
	t.Setenv("SCENARIO_API_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when SCENARIO_API_URL is missing")
	}
}

func TestLoadEquityOptional(t *testing.T) {
	t.Setenv("SCENARIO_API_URL", "http://localhost:8081")
	t.Setenv("EQUITY_API_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.HasEquityAPI() {
		t.Error("equity API should be unset")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"zero target", func(c *Config) { c.Cache.TargetPerLevel = 0 }, true},
		{"negative lookahead", func(c *Config) { c.Cache.Lookahead = -1 }, true},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
	}

	for _, tt := range tests {
		cfg := Config{
			ScenarioAPIURL: "http://localhost:8081",
			Cache: CacheConfig{
				TTL:            5 * time.Minute,
				TargetPerLevel: 2,
				Lookahead:      2,
			},
		}
		tt.mutate(&cfg)
		err := cfg.Validate()
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}
