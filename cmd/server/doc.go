// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package main is the entry point for the Branchpulse API server.
//
// Branchpulse is the backend for a multi-branch business review dashboard:
// per-branch todos and concerns, branch registration with a map location,
// and a review gateway that labels customer reviews through an external
// sentiment predictor.
//
// # Startup
//
//  1. Configuration: defaults, config.yaml, .env and environment (Koanf v2)
//  2. Database: DuckDB file or PostgreSQL, schema applied on open
//  3. Predictor client with rate limiting and a circuit breaker
//  4. Optional identity provider for /api/signup and /api/users
//  5. JWT manager when AUTH_MODE=jwt
//  6. Supervisor tree: HTTP server in the API layer, scheduled batch
//     analysis in the worker layer when PREDICTOR_BATCH_INTERVAL is set
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server drains for
// SERVER_SHUTDOWN_TIMEOUT before the database is closed.
package main
