// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package testinfra provides containers and stub services for integration
// tests. Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// PostgresContainer starts a throwaway PostgreSQL through testcontainers-go
// so the store can be exercised against the managed-database driver:
//
//	pg, err := testinfra.NewPostgresContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, pg)
//
//	db, err := database.New(ctx, &config.DatabaseConfig{Driver: "postgres", DSN: pg.DSN})
//
// MockPredictor is an httptest server speaking the predictor protocol
// (/predict, /predict_batch, /health) with scripted labels.
//
// Tests skip when Docker is not reachable.
package testinfra
