// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/branchpulse/config.yaml",
}

const (
	// ConfigPathEnvVar overrides the YAML config file location.
	ConfigPathEnvVar = "CONFIG_PATH"

	// DotEnvPathEnvVar overrides the .env file location.
	DotEnvPathEnvVar = "DOTENV_PATH"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Driver:          "duckdb",
			Path:            "/data/branchpulse.duckdb",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectRetries:  10,
			RetryDelay:      2 * time.Second,
		},
		Predictor: PredictorConfig{
			URL:                "http://localhost:5000",
			Timeout:            10 * time.Second,
			BatchTimeout:       30 * time.Second,
			RequestsPerSecond:  20,
			Burst:              5,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Identity: IdentityConfig{
			Enabled: false,
			Timeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:        "none",
			SessionTimeout:  24 * time.Hour,
			BcryptCost:      12,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Cache: CacheConfig{
			StatsTTL:  30 * time.Second,
			StatsSize: 256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf runs the full layering described in the package comment.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// loadDotEnv exports a .env file into the process environment. Variables
// already set in the environment are left untouched. A missing default
// .env is not an error; a missing explicit DOTENV_PATH is.
func loadDotEnv() error {
	path, explicit := os.LookupEnv(DotEnvPathEnvVar)
	if !explicit || path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields turns comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings is the complete list of recognised environment variables.
// SUPABASE_* names are accepted so existing deployments keep working.
var envMappings = map[string]string{
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"db_driver":            "database.driver",
	"duckdb_path":          "database.path",
	"database_url":         "database.dsn",
	"db_max_open_conns":    "database.max_open_conns",
	"db_max_idle_conns":    "database.max_idle_conns",
	"db_conn_max_lifetime": "database.conn_max_lifetime",
	"db_connect_retries":   "database.connect_retries",
	"db_retry_delay":       "database.retry_delay",

	"sentiment_api_url":          "predictor.url",
	"predictor_timeout":          "predictor.timeout",
	"predictor_batch_timeout":    "predictor.batch_timeout",
	"predictor_rps":              "predictor.requests_per_second",
	"predictor_burst":            "predictor.burst",
	"predictor_breaker_failures": "predictor.breaker_max_failures",
	"predictor_breaker_timeout":  "predictor.breaker_timeout",
	"predictor_batch_interval":   "predictor.batch_interval",

	"cache_stats_ttl":  "cache.stats_ttl",
	"cache_stats_size": "cache.stats_size",

	"auth_provider_enabled":     "identity.enabled",
	"auth_provider_url":         "identity.url",
	"auth_provider_anon_key":    "identity.anon_key",
	"auth_provider_service_key": "identity.service_key",
	"auth_provider_timeout":     "identity.timeout",
	"supabase_url":              "identity.url",
	"supabase_anon_key":         "identity.anon_key",
	"supabase_service_role_key": "identity.service_key",

	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"bcrypt_cost":         "security.bcrypt_cost",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable to its koanf path.
// Unknown variables map to "" and are dropped by the provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
