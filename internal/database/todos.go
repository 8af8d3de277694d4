// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/branchpulse/internal/models"
)

const todoColumns = `id, branch_id, title, category, priority, due_date, notes, completed, completed_at, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTodo(s rowScanner) (models.Todo, error) {
	var t models.Todo
	err := s.Scan(&t.ID, &t.BranchID, &t.Title, &t.Category, &t.Priority, &t.DueDate,
		&t.Notes, &t.Completed, &t.CompletedAt, &t.CreatedAt)
	return t, err
}

// GetTodosByBranch returns every todo of the branch, newest first.
func (db *DB) GetTodosByBranch(ctx context.Context, branchID string) (todos []models.Todo, err error) {
	defer db.observe("SELECT", "todos", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE branch_id = $1 ORDER BY created_at DESC, id`, branchID)
	if err != nil {
		return nil, translateError("get todos", err)
	}
	defer closeWithLog(rows, "rows")

	todos = []models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, translateError("scan todo", err)
		}
		todos = append(todos, t)
	}
	return todos, translateError("iterate todos", rows.Err())
}

// AddTodo stores a new, not yet completed todo and returns the stored row.
func (db *DB) AddTodo(ctx context.Context, in models.NewTodo) (_ *models.Todo, err error) {
	defer db.observe("INSERT", "todos", time.Now(), &err)

	t := models.Todo{
		ID:        uuid.NewString(),
		BranchID:  in.BranchID,
		Title:     in.Title,
		Category:  defaultString(in.Category, "general"),
		Priority:  defaultString(in.Priority, "medium"),
		DueDate:   in.DueDate,
		Notes:     in.Notes,
		Completed: false,
		CreatedAt: db.now(),
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO todos (`+todoColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.BranchID, t.Title, t.Category, t.Priority, nullString(t.DueDate), t.Notes,
		t.Completed, nil, t.CreatedAt)
	if err != nil {
		return nil, translateError("add todo", err)
	}
	return &t, nil
}

// ToggleTodoStatus sets completed and keeps completed_at in step: the
// current time when completing, NULL when reopening.
func (db *DB) ToggleTodoStatus(ctx context.Context, id string, completed bool) (_ *models.Todo, err error) {
	defer db.observe("UPDATE", "todos", time.Now(), &err)

	var completedAt *time.Time
	if completed {
		now := db.now()
		completedAt = &now
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE todos SET completed = $1, completed_at = $2 WHERE id = $3`,
		completed, nullTime(completedAt), id)
	if err != nil {
		return nil, translateError("toggle todo", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, translateError("toggle todo", ErrNotFound)
	}

	t, err := scanTodo(db.conn.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id))
	if err != nil {
		return nil, translateError("reload todo", err)
	}
	return &t, nil
}

// DeleteTodo removes the todo. Deleting an id that does not exist is not
// an error.
func (db *DB) DeleteTodo(ctx context.Context, id string) (_ bool, err error) {
	defer db.observe("DELETE", "todos", time.Now(), &err)

	if _, err = db.conn.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id); err != nil {
		return false, translateError("delete todo", err)
	}
	return true, nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
