// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/branchpulse/internal/database/query"
	"github.com/tomtom215/branchpulse/internal/models"
)

const branchColumns = `branch_id, business_name, branch_name, branch_password, business_type,
	year_established, full_name, contact_position, email, phone, address, city, state,
	zip_code, country, review_platforms, additional_info, newsletter_subscribed,
	latitude, longitude, created_at, updated_at`

func scanBranch(s rowScanner) (*models.Branch, error) {
	var (
		b         models.Branch
		platforms string
	)
	err := s.Scan(&b.BranchID, &b.BusinessName, &b.BranchName, &b.PasswordHash, &b.BusinessType,
		&b.YearEstablished, &b.FullName, &b.Position, &b.Email, &b.Phone, &b.Address, &b.City, &b.State,
		&b.ZipCode, &b.Country, &platforms, &b.AdditionalInfo, &b.NewsletterSubscribed,
		&b.Latitude, &b.Longitude, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.ReviewPlatforms, err = decodePlatforms(platforms)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func encodePlatforms(p []string) (string, error) {
	if p == nil {
		p = []string{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode review platforms: %w", err)
	}
	return string(data), nil
}

func decodePlatforms(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode review platforms: %w", err)
	}
	return out, nil
}

// CreateBranch stores a newly registered branch. b.PasswordHash must
// already be hashed. A taken branch_id yields ErrConflict.
func (db *DB) CreateBranch(ctx context.Context, b *models.Branch) (err error) {
	defer db.observe("INSERT", "branches", time.Now(), &err)

	platforms, err := encodePlatforms(b.ReviewPlatforms)
	if err != nil {
		return err
	}
	now := db.now()
	b.CreatedAt, b.UpdatedAt = now, now
	if b.ReviewPlatforms == nil {
		b.ReviewPlatforms = []string{}
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO branches (`+branchColumns+`) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		b.BranchID, b.BusinessName, b.BranchName, b.PasswordHash, b.BusinessType,
		nullInt(b.YearEstablished), b.FullName, b.Position, b.Email, b.Phone, b.Address, b.City, b.State,
		b.ZipCode, b.Country, platforms, b.AdditionalInfo, b.NewsletterSubscribed,
		nullFloat(b.Latitude), nullFloat(b.Longitude), b.CreatedAt, b.UpdatedAt)
	return translateError("create branch", err)
}

// GetBranch loads one branch including its password hash.
func (db *DB) GetBranch(ctx context.Context, branchID string) (_ *models.Branch, err error) {
	defer db.observe("SELECT", "branches", time.Now(), &err)

	b, err := scanBranch(db.conn.QueryRowContext(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE branch_id = $1`, branchID))
	if err != nil {
		return nil, translateError("get branch", err)
	}
	return b, nil
}

// GetBranchLocations returns the map projection of every branch.
func (db *DB) GetBranchLocations(ctx context.Context) (locs []models.BranchLocation, err error) {
	defer db.observe("SELECT", "branches", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT branch_id, branch_name, address, city, latitude, longitude FROM branches ORDER BY branch_id`)
	if err != nil {
		return nil, translateError("get branch locations", err)
	}
	defer closeWithLog(rows, "rows")

	locs = []models.BranchLocation{}
	for rows.Next() {
		var l models.BranchLocation
		if err := rows.Scan(&l.BranchID, &l.BranchName, &l.Address, &l.City, &l.Latitude, &l.Longitude); err != nil {
			return nil, translateError("scan branch location", err)
		}
		locs = append(locs, l)
	}
	return locs, translateError("iterate branch locations", rows.Err())
}

// UpdateBranchProfile applies the non-nil fields of u and returns the
// updated branch.
func (db *DB) UpdateBranchProfile(ctx context.Context, branchID string, u models.BranchProfileUpdate) (*models.Branch, error) {
	sb := query.NewSetBuilder()
	setIf(sb, "business_name", u.BusinessName)
	setIf(sb, "branch_name", u.BranchName)
	setIf(sb, "business_type", u.BusinessType)
	if u.YearEstablished != nil {
		sb.Set("year_established", *u.YearEstablished)
	}
	setIf(sb, "full_name", u.FullName)
	setIf(sb, "contact_position", u.Position)
	setIf(sb, "email", u.Email)
	setIf(sb, "phone", u.Phone)
	setIf(sb, "address", u.Address)
	setIf(sb, "city", u.City)
	setIf(sb, "state", u.State)
	setIf(sb, "zip_code", u.ZipCode)
	setIf(sb, "country", u.Country)
	if u.ReviewPlatforms != nil {
		platforms, err := encodePlatforms(*u.ReviewPlatforms)
		if err != nil {
			return nil, err
		}
		sb.Set("review_platforms", platforms)
	}
	setIf(sb, "additional_info", u.AdditionalInfo)
	if u.NewsletterSubscribed != nil {
		sb.Set("newsletter_subscribed", *u.NewsletterSubscribed)
	}

	if sb.Len() == 0 {
		return db.GetBranch(ctx, branchID)
	}
	return db.updateBranch(ctx, branchID, sb)
}

// UpdateBranchLocation sets the branch coordinates.
func (db *DB) UpdateBranchLocation(ctx context.Context, branchID string, lat, lng float64) (*models.Branch, error) {
	sb := query.NewSetBuilder().Set("latitude", lat).Set("longitude", lng)
	return db.updateBranch(ctx, branchID, sb)
}

func (db *DB) updateBranch(ctx context.Context, branchID string, sb *query.SetBuilder) (_ *models.Branch, err error) {
	sb.Set("updated_at", db.now())
	set, args := sb.Build()
	where, whereArgs := query.NewWhereBuilder().StartAt(sb.Len()).AddClause("branch_id = ?", branchID).BuildWithPrefix()
	args = append(args, whereArgs...)

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `UPDATE branches SET `+set+` `+where, args...)
	db.observe("UPDATE", "branches", start, &err)
	if err != nil {
		return nil, translateError("update branch", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, translateError("update branch", ErrNotFound)
	}
	return db.GetBranch(ctx, branchID)
}

func setIf(sb *query.SetBuilder, column string, v *string) {
	if v != nil {
		sb.Set(column, *v)
	}
}
