// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package cache provides a bounded in-memory LRU cache with per-entry TTL.
//
// The review gateway uses it to serve repeated /api/reviews/stats calls
// without re-aggregating the reviews table:
//
//	stats := cache.NewLRU[models.ReviewStats](256, 30*time.Second)
//	if v, ok := stats.Get(business); ok {
//	    return v, nil
//	}
//
// Expired entries are dropped lazily on access. All methods are safe for
// concurrent use.
package cache
