// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package models

import "time"

// Concern statuses.
const (
	ConcernOpen       = "open"
	ConcernInProgress = "in_progress"
	ConcernResolved   = "resolved"
)

// Concern is a customer issue raised against a branch.
type Concern struct {
	ID          string    `json:"id"`
	BranchID    string    `json:"branch_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewConcern holds the caller supplied fields of a concern.
type NewConcern struct {
	BranchID    string
	Title       string
	Description string
	Priority    string
	Category    string
	Status      string
}

// ConcernUpdate is a partial update; nil fields are left unchanged.
type ConcernUpdate struct {
	Title       *string
	Description *string
	Priority    *string
	Category    *string
	Status      *string
}

// IsEmpty reports whether the update changes nothing.
func (u ConcernUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil && u.Category == nil && u.Status == nil
}
