// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// minJWTSecretLength is the shortest HMAC secret accepted in jwt mode.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validatePredictor(); err != nil {
		return err
	}
	if err := c.validateIdentity(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.Server.ShutdownTimeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "duckdb":
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DB_DRIVER=duckdb")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be duckdb or postgres, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database connection pool sizes must not be negative")
	}
	if c.Database.ConnectRetries < 1 {
		return fmt.Errorf("DB_CONNECT_RETRIES must be at least 1, got %d", c.Database.ConnectRetries)
	}
	return nil
}

func (c *Config) validatePredictor() error {
	if err := validateHTTPURL(c.Predictor.URL, "SENTIMENT_API_URL"); err != nil {
		return err
	}
	if c.Predictor.Timeout <= 0 || c.Predictor.BatchTimeout <= 0 {
		return fmt.Errorf("PREDICTOR_TIMEOUT and PREDICTOR_BATCH_TIMEOUT must be positive")
	}
	if c.Predictor.RequestsPerSecond < 0 {
		return fmt.Errorf("PREDICTOR_RPS must not be negative, got %v", c.Predictor.RequestsPerSecond)
	}
	if c.Predictor.RequestsPerSecond > 0 && c.Predictor.Burst < 1 {
		return fmt.Errorf("PREDICTOR_BURST must be at least 1 when PREDICTOR_RPS is set")
	}
	if c.Predictor.BreakerMaxFailures == 0 {
		return fmt.Errorf("PREDICTOR_BREAKER_FAILURES must be at least 1")
	}
	if c.Predictor.BatchInterval != 0 && c.Predictor.BatchInterval < time.Minute {
		return fmt.Errorf("PREDICTOR_BATCH_INTERVAL must be 0 or at least 1m, got %v", c.Predictor.BatchInterval)
	}
	return nil
}

func (c *Config) validateIdentity() error {
	if !c.Identity.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.Identity.URL, "AUTH_PROVIDER_URL"); err != nil {
		return err
	}
	if c.Identity.AnonKey == "" {
		return fmt.Errorf("AUTH_PROVIDER_ANON_KEY is required when AUTH_PROVIDER_ENABLED=true")
	}
	if c.Identity.Timeout <= 0 {
		return fmt.Errorf("AUTH_PROVIDER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	case "jwt":
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
		}
		if c.Security.SessionTimeout <= 0 {
			return fmt.Errorf("SESSION_TIMEOUT must be positive")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be none or jwt, got %q", c.Security.AuthMode)
	}

	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Security.BcryptCost)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}

	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			continue
		}
		if err := validateHTTPURL(origin, "CORS_ORIGINS"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.StatsTTL < 0 {
		return fmt.Errorf("CACHE_STATS_TTL must not be negative, got %v", c.Cache.StatsTTL)
	}
	if c.Cache.StatsTTL > 0 && c.Cache.StatsSize < 1 {
		return fmt.Errorf("CACHE_STATS_SIZE must be positive when CACHE_STATS_TTL is set, got %d", c.Cache.StatsSize)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

// validateHTTPURL requires an absolute http(s) URL with a host.
func validateHTTPURL(raw, field string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", field)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", field)
	}
	return nil
}
