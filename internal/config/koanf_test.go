// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Database.Driver != "duckdb" {
		t.Errorf("Database.Driver = %q, want duckdb", cfg.Database.Driver)
	}
	if cfg.Predictor.Timeout != 10*time.Second {
		t.Errorf("Predictor.Timeout = %v, want 10s", cfg.Predictor.Timeout)
	}
	if cfg.Predictor.BatchTimeout != 30*time.Second {
		t.Errorf("Predictor.BatchTimeout = %v, want 30s", cfg.Predictor.BatchTimeout)
	}
	if cfg.Security.AuthMode != "none" {
		t.Errorf("Security.AuthMode = %q, want none", cfg.Security.AuthMode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Predictor.URL != "http://localhost:5000" {
		t.Errorf("Predictor.URL = %q", cfg.Predictor.URL)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "8088")
	t.Setenv("SENTIMENT_API_URL", "http://ml:5000")
	t.Setenv("PREDICTOR_TIMEOUT", "3s")
	t.Setenv("PREDICTOR_RPS", "2.5")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("Server.Port = %d, want 8088", cfg.Server.Port)
	}
	if cfg.Predictor.URL != "http://ml:5000" {
		t.Errorf("Predictor.URL = %q", cfg.Predictor.URL)
	}
	if cfg.Predictor.Timeout != 3*time.Second {
		t.Errorf("Predictor.Timeout = %v, want 3s", cfg.Predictor.Timeout)
	}
	if cfg.Predictor.RequestsPerSecond != 2.5 {
		t.Errorf("Predictor.RequestsPerSecond = %v, want 2.5", cfg.Predictor.RequestsPerSecond)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if strings.Join(cfg.Security.CORSOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
database:
  driver: postgres
  dsn: postgres://bp:bp@db:5432/bp?sslmode=disable
predictor:
  url: http://yaml-ml:5000
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SENTIMENT_API_URL", "http://env-ml:5000")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000 from yaml", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" || !strings.HasPrefix(cfg.Database.DSN, "postgres://") {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Predictor.URL != "http://env-ml:5000" {
		t.Errorf("env should win over yaml, got %q", cfg.Predictor.URL)
	}
}

func TestLoadWithKoanf_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := "SUPABASE_URL=https://project.supabase.co\nSUPABASE_ANON_KEY=anon\nAUTH_PROVIDER_ENABLED=true\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	t.Setenv(DotEnvPathEnvVar, envFile)
	// godotenv exports into the process environment; register cleanups so
	// the values set here do not leak into other tests.
	for _, k := range []string{"SUPABASE_URL", "SUPABASE_ANON_KEY", "AUTH_PROVIDER_ENABLED"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if !cfg.Identity.Enabled || cfg.Identity.URL != "https://project.supabase.co" || cfg.Identity.AnonKey != "anon" {
		t.Errorf("Identity = %+v", cfg.Identity)
	}
}

func TestLoadWithKoanf_MissingExplicitDotEnv(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(DotEnvPathEnvVar, filepath.Join(t.TempDir(), "nope.env"))

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected error for missing explicit DOTENV_PATH")
	}
}

func TestLoadWithKoanf_InvalidFails(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SECRET", "short")

	_, err := LoadWithKoanf()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET validation error, got %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"HTTP_PORT":                 "server.port",
		"duckdb_path":               "database.path",
		"SUPABASE_SERVICE_ROLE_KEY": "identity.service_key",
		"PATH":                      "",
		"HOME":                      "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
