// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/branchpulse/internal/models"
)

func newTestBranch(id string) *models.Branch {
	return &models.Branch{
		BranchID:        id,
		BusinessName:    "Cafe X",
		BranchName:      "Cafe X " + id,
		PasswordHash:    "$2a$04$hash",
		Address:         "1 Main St",
		City:            "Manila",
		ReviewPlatforms: []string{"google", "yelp"},
	}
}

func TestCreateAndGetBranch(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	year := 2019
	b := newTestBranch("b1")
	b.YearEstablished = &year
	if err := db.CreateBranch(ctx, b); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	got, err := db.GetBranch(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBranch: %v", err)
	}
	if got.BranchName != b.BranchName || got.PasswordHash != b.PasswordHash {
		t.Errorf("GetBranch = %+v", got)
	}
	if len(got.ReviewPlatforms) != 2 || got.ReviewPlatforms[1] != "yelp" {
		t.Errorf("review platforms = %v", got.ReviewPlatforms)
	}
	if got.YearEstablished == nil || *got.YearEstablished != 2019 {
		t.Errorf("year established = %v", got.YearEstablished)
	}
	if got.Latitude != nil || got.Longitude != nil {
		t.Error("coordinates should be unset")
	}
}

func TestCreateBranch_DuplicateIsConflict(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.CreateBranch(ctx, newTestBranch("b1")); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	err := db.CreateBranch(ctx, newTestBranch("b1"))
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateBranch err = %v, want ErrConflict", err)
	}
}

func TestGetBranch_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	if _, err := db.GetBranch(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetBranchLocations(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"b2", "b1"} {
		if err := db.CreateBranch(ctx, newTestBranch(id)); err != nil {
			t.Fatalf("CreateBranch: %v", err)
		}
	}
	if _, err := db.UpdateBranchLocation(ctx, "b1", 14.5995, 120.9842); err != nil {
		t.Fatalf("UpdateBranchLocation: %v", err)
	}

	locs, err := db.GetBranchLocations(ctx)
	if err != nil {
		t.Fatalf("GetBranchLocations: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("got %d locations, want 2", len(locs))
	}
	if locs[0].BranchID != "b1" {
		t.Errorf("locations not ordered by branch_id: %v", locs)
	}
	if locs[0].Latitude == nil || *locs[0].Latitude != 14.5995 {
		t.Errorf("latitude = %v", locs[0].Latitude)
	}
	if locs[1].Latitude != nil {
		t.Errorf("b2 latitude = %v, want nil", *locs[1].Latitude)
	}
}

func TestUpdateBranchProfile(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.CreateBranch(ctx, newTestBranch("b1")); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	name := "Renamed"
	position := "Manager"
	platforms := []string{"tripadvisor"}
	subscribed := true
	got, err := db.UpdateBranchProfile(ctx, "b1", models.BranchProfileUpdate{
		BranchName:           &name,
		Position:             &position,
		ReviewPlatforms:      &platforms,
		NewsletterSubscribed: &subscribed,
	})
	if err != nil {
		t.Fatalf("UpdateBranchProfile: %v", err)
	}
	if got.BranchName != name || got.Position != position || !got.NewsletterSubscribed {
		t.Errorf("profile = %+v", got)
	}
	if len(got.ReviewPlatforms) != 1 || got.ReviewPlatforms[0] != "tripadvisor" {
		t.Errorf("platforms = %v", got.ReviewPlatforms)
	}
	if got.City != "Manila" {
		t.Errorf("untouched field changed: city = %q", got.City)
	}

	if _, err := db.UpdateBranchProfile(ctx, "missing", models.BranchProfileUpdate{BranchName: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing branch err = %v, want ErrNotFound", err)
	}
}
