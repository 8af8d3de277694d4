// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad environment", func(c *Config) { c.Server.Environment = "qa" }, "ENVIRONMENT"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, "DB_DRIVER"},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, "DATABASE_URL"},
		{"duckdb without path", func(c *Config) { c.Database.Path = "" }, "DUCKDB_PATH"},
		{"predictor url scheme", func(c *Config) { c.Predictor.URL = "ftp://ml" }, "SENTIMENT_API_URL"},
		{"predictor url empty", func(c *Config) { c.Predictor.URL = "" }, "SENTIMENT_API_URL"},
		{"zero breaker", func(c *Config) { c.Predictor.BreakerMaxFailures = 0 }, "PREDICTOR_BREAKER_FAILURES"},
		{"rps without burst", func(c *Config) { c.Predictor.Burst = 0 }, "PREDICTOR_BURST"},
		{"batch interval too short", func(c *Config) { c.Predictor.BatchInterval = 10 * time.Second }, "PREDICTOR_BATCH_INTERVAL"},
		{"batch interval hourly", func(c *Config) { c.Predictor.BatchInterval = time.Hour }, ""},
		{"identity missing key", func(c *Config) {
			c.Identity.Enabled = true
			c.Identity.URL = "https://auth.example.com"
		}, "AUTH_PROVIDER_ANON_KEY"},
		{"jwt short secret", func(c *Config) { c.Security.AuthMode = "jwt" }, "JWT_SECRET"},
		{"jwt ok", func(c *Config) {
			c.Security.AuthMode = "jwt"
			c.Security.JWTSecret = strings.Repeat("k", 32)
		}, ""},
		{"none in production", func(c *Config) { c.Server.Environment = "production" }, "AUTH_MODE"},
		{"unknown auth mode", func(c *Config) { c.Security.AuthMode = "basic" }, "AUTH_MODE"},
		{"bcrypt cost", func(c *Config) { c.Security.BcryptCost = 2 }, "BCRYPT_COST"},
		{"rate limit zero", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit zero but disabled", func(c *Config) {
			c.Security.RateLimitReqs = 0
			c.Security.RateLimitDisabled = true
		}, ""},
		{"bad cors origin", func(c *Config) { c.Security.CORSOrigins = []string{"example.com"} }, "CORS_ORIGINS"},
		{"negative stats ttl", func(c *Config) { c.Cache.StatsTTL = -time.Second }, "CACHE_STATS_TTL"},
		{"stats cache without size", func(c *Config) { c.Cache.StatsSize = 0 }, "CACHE_STATS_SIZE"},
		{"stats cache disabled", func(c *Config) {
			c.Cache.StatsTTL = 0
			c.Cache.StatsSize = 0
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
