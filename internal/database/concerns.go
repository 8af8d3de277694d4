// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/branchpulse/internal/database/query"
	"github.com/tomtom215/branchpulse/internal/models"
)

const concernColumns = `id, branch_id, title, description, priority, category, status, created_at, updated_at`

func scanConcern(s rowScanner) (models.Concern, error) {
	var c models.Concern
	err := s.Scan(&c.ID, &c.BranchID, &c.Title, &c.Description, &c.Priority, &c.Category,
		&c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetConcernsByBranch lists the branch's concerns newest first, optionally
// restricted to one status.
func (db *DB) GetConcernsByBranch(ctx context.Context, branchID, status string) (out []models.Concern, err error) {
	defer db.observe("SELECT", "concerns", time.Now(), &err)

	where, args := query.NewWhereBuilder().
		AddClause("branch_id = ?", branchID).
		AddEquals("status", status).
		BuildWithPrefix()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+concernColumns+` FROM concerns `+where+` ORDER BY created_at DESC, id`, args...)
	if err != nil {
		return nil, translateError("get concerns", err)
	}
	defer closeWithLog(rows, "rows")

	out = []models.Concern{}
	for rows.Next() {
		c, err := scanConcern(rows)
		if err != nil {
			return nil, translateError("scan concern", err)
		}
		out = append(out, c)
	}
	return out, translateError("iterate concerns", rows.Err())
}

// GetConcern loads one concern.
func (db *DB) GetConcern(ctx context.Context, id string) (_ *models.Concern, err error) {
	defer db.observe("SELECT", "concerns", time.Now(), &err)

	c, err := scanConcern(db.conn.QueryRowContext(ctx, `SELECT `+concernColumns+` FROM concerns WHERE id = $1`, id))
	if err != nil {
		return nil, translateError("get concern", err)
	}
	return &c, nil
}

// AddConcern stores a new concern. Status defaults to open.
func (db *DB) AddConcern(ctx context.Context, in models.NewConcern) (_ *models.Concern, err error) {
	defer db.observe("INSERT", "concerns", time.Now(), &err)

	now := db.now()
	c := models.Concern{
		ID:          uuid.NewString(),
		BranchID:    in.BranchID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    defaultString(in.Priority, "medium"),
		Category:    defaultString(in.Category, "general"),
		Status:      defaultString(in.Status, models.ConcernOpen),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO concerns (`+concernColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.BranchID, c.Title, c.Description, c.Priority, c.Category, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, translateError("add concern", err)
	}
	return &c, nil
}

// UpdateConcern applies the non-nil fields of u.
func (db *DB) UpdateConcern(ctx context.Context, id string, u models.ConcernUpdate) (_ *models.Concern, err error) {
	if u.IsEmpty() {
		return db.GetConcern(ctx, id)
	}

	sb := query.NewSetBuilder()
	setIf(sb, "title", u.Title)
	setIf(sb, "description", u.Description)
	setIf(sb, "priority", u.Priority)
	setIf(sb, "category", u.Category)
	setIf(sb, "status", u.Status)
	sb.Set("updated_at", db.now())

	set, args := sb.Build()
	where, whereArgs := query.NewWhereBuilder().StartAt(sb.Len()).AddClause("id = ?", id).BuildWithPrefix()
	args = append(args, whereArgs...)

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `UPDATE concerns SET `+set+` `+where, args...)
	db.observe("UPDATE", "concerns", start, &err)
	if err != nil {
		return nil, translateError("update concern", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, translateError("update concern", ErrNotFound)
	}
	return db.GetConcern(ctx, id)
}

// DeleteConcern removes a concern; ErrNotFound when nothing matched.
func (db *DB) DeleteConcern(ctx context.Context, id string) (err error) {
	defer db.observe("DELETE", "concerns", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx, `DELETE FROM concerns WHERE id = $1`, id)
	if err != nil {
		return translateError("delete concern", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translateError("delete concern", ErrNotFound)
	}
	return nil
}
