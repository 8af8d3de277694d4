// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package models defines the records stored and served by Branchpulse.
//
// Stored rows serialize with snake_case JSON names matching their columns.
// Request payloads accepted from the dashboard use camelCase and live in
// internal/api.
package models
