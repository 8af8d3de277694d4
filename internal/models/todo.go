// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package models

import "time"

// Todo is a task tracked for a branch.
// CompletedAt is non-nil exactly when Completed is true.
type Todo struct {
	ID          string     `json:"id"`
	BranchID    string     `json:"branch_id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	DueDate     *string    `json:"due_date"` // YYYY-MM-DD
	Notes       string     `json:"notes"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewTodo holds the caller supplied fields of a todo.
type NewTodo struct {
	BranchID string
	Title    string
	Category string
	Priority string
	DueDate  *string
	Notes    string
}
