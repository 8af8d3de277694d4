// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/tomtom215/branchpulse/internal/logging"
)

var (
	// ErrNotFound means no row matched the key.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a row with the same key already exists.
	ErrConflict = errors.New("record already exists")

	// ErrConstraint means the row was rejected by a NOT NULL or CHECK constraint.
	ErrConstraint = errors.New("record violates a constraint")
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
	pgCheckViolation   = "23514"
)

// translateError maps driver errors onto the package sentinels, keeping the
// original error in the chain for logs.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		case pgNotNullViolation, pgCheckViolation:
			return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
		}
	}

	// DuckDB reports constraint failures as "Constraint Error: ..." text.
	if msg := err.Error(); strings.Contains(msg, "Constraint Error") {
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "duplicate key") || strings.Contains(lower, "primary key") || strings.Contains(lower, "unique constraint") {
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		}
		return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// closeQuietly closes c, ignoring errors. For cleanup on paths that are
// already failing.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// closeWithLog closes c and logs a failure.
func closeWithLog(c io.Closer, resource string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Warn().Str("type", resource).Err(err).Msg("Failed to close resource")
	}
}

// nullable helpers turn optional Go values into driver arguments.

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
