// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package database is the relational store behind Branchpulse.
//
// The same SQL runs on two engines selected by config.DatabaseConfig.Driver:
// an embedded DuckDB file (the default, also used by the unit tests with
// ":memory:") and PostgreSQL for managed deployments. Statements therefore
// stick to the common dialect: $n placeholders, VARCHAR, FLOAT8,
// BOOLEAN, TIMESTAMP. Timestamps are written in UTC by Go rather than by
// column defaults.
//
// Every exported store method takes a context and is safe for concurrent use.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver

	"github.com/tomtom215/branchpulse/internal/config"
	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/metrics"
)

// Supported drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

// DB wraps the connection pool.
type DB struct {
	conn   *sql.DB
	driver string
	now    func() time.Time
}

// New opens the configured database, waits for it to answer, and applies
// the schema.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	driver, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	db := &DB{conn: conn, driver: driver, now: func() time.Time { return time.Now().UTC() }}

	if err := db.waitForConnection(ctx, cfg.ConnectRetries, cfg.RetryDelay); err != nil {
		closeQuietly(conn)
		return nil, err
	}
	if err := db.migrate(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logging.Info().Str("driver", driver).Msg("Database ready")
	return db, nil
}

func dataSource(cfg *config.DatabaseConfig) (driver, dsn string, err error) {
	switch cfg.Driver {
	case DriverDuckDB, "":
		if cfg.Path == "" {
			return "", "", fmt.Errorf("duckdb path is required")
		}
		if cfg.Path != ":memory:" {
			dir := filepath.Dir(cfg.Path)
			if dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return "", "", fmt.Errorf("failed to create database directory %s: %w", dir, err)
				}
			}
		}
		return DriverDuckDB, cfg.Path, nil
	case DriverPostgres:
		if cfg.DSN == "" {
			return "", "", fmt.Errorf("postgres dsn is required")
		}
		return DriverPostgres, cfg.DSN, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// waitForConnection pings until the server answers, up to attempts times.
func (db *DB) waitForConnection(ctx context.Context, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = db.Ping(ctx); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		logging.Warn().Err(err).Int("attempt", i).Int("max_attempts", attempts).Msg("Database not reachable yet, retrying")
		select {
		case <-ctx.Done():
			return fmt.Errorf("database ping canceled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("database ping failed after %d attempts: %w", attempts, err)
}

// Ping checks that the database answers.
func (db *DB) Ping(ctx context.Context) error {
	start := time.Now()
	err := db.conn.PingContext(ctx)
	metrics.RecordDBQuery("PING", "", time.Since(start), err)
	return err
}

// Driver returns the driver name in use.
func (db *DB) Driver() string {
	return db.driver
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// observe records one query for metrics. Use as
//
//	defer db.observe("SELECT", "todos", time.Now(), &err)
func (db *DB) observe(operation, table string, start time.Time, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}
