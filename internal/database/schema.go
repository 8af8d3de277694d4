// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package database

import (
	"context"
	"fmt"
)

// schemaStatements run in order on every start. Each must be idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS branches (
		branch_id             VARCHAR PRIMARY KEY,
		business_name         VARCHAR NOT NULL,
		branch_name           VARCHAR NOT NULL,
		branch_password       VARCHAR NOT NULL,
		business_type         VARCHAR NOT NULL DEFAULT '',
		year_established      INTEGER,
		full_name             VARCHAR NOT NULL DEFAULT '',
		contact_position      VARCHAR NOT NULL DEFAULT '',
		email                 VARCHAR NOT NULL DEFAULT '',
		phone                 VARCHAR NOT NULL DEFAULT '',
		address               VARCHAR NOT NULL DEFAULT '',
		city                  VARCHAR NOT NULL DEFAULT '',
		state                 VARCHAR NOT NULL DEFAULT '',
		zip_code              VARCHAR NOT NULL DEFAULT '',
		country               VARCHAR NOT NULL DEFAULT '',
		review_platforms      VARCHAR NOT NULL DEFAULT '[]',
		additional_info       VARCHAR NOT NULL DEFAULT '',
		newsletter_subscribed BOOLEAN NOT NULL DEFAULT FALSE,
		latitude              FLOAT8,
		longitude             FLOAT8,
		created_at            TIMESTAMP NOT NULL,
		updated_at            TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS todos (
		id           VARCHAR PRIMARY KEY,
		branch_id    VARCHAR NOT NULL,
		title        VARCHAR NOT NULL CHECK (length(title) > 0),
		category     VARCHAR NOT NULL DEFAULT 'general',
		priority     VARCHAR NOT NULL DEFAULT 'medium',
		due_date     VARCHAR,
		notes        VARCHAR NOT NULL DEFAULT '',
		completed    BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMP,
		created_at   TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_branch ON todos (branch_id)`,

	`CREATE TABLE IF NOT EXISTS concerns (
		id          VARCHAR PRIMARY KEY,
		branch_id   VARCHAR NOT NULL,
		title       VARCHAR NOT NULL CHECK (length(title) > 0),
		description VARCHAR NOT NULL DEFAULT '',
		priority    VARCHAR NOT NULL DEFAULT 'medium',
		category    VARCHAR NOT NULL DEFAULT 'general',
		status      VARCHAR NOT NULL DEFAULT 'open',
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_concerns_branch ON concerns (branch_id)`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id                   VARCHAR PRIMARY KEY,
		business_name        VARCHAR NOT NULL,
		business_category    VARCHAR NOT NULL DEFAULT '',
		address              VARCHAR NOT NULL DEFAULT '',
		city                 VARCHAR NOT NULL,
		latitude             FLOAT8,
		longitude            FLOAT8,
		reviewer_name        VARCHAR NOT NULL DEFAULT '',
		review_rating        INTEGER NOT NULL,
		review_text          VARCHAR NOT NULL,
		clean_review_text    VARCHAR NOT NULL DEFAULT '',
		review_date          VARCHAR NOT NULL DEFAULT '',
		meal_type            VARCHAR NOT NULL DEFAULT '',
		price_per_person     FLOAT8,
		sentiment_score      VARCHAR,
		sentiment_confidence FLOAT8,
		year                 INTEGER NOT NULL DEFAULT 0,
		month                INTEGER NOT NULL DEFAULT 0,
		day_of_week          VARCHAR NOT NULL DEFAULT '',
		hour                 INTEGER NOT NULL DEFAULT 0,
		created_at           TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_business ON reviews (business_name)`,
}

func (db *DB) migrate(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
