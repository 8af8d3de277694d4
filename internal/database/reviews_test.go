// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package database

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/models"
)

func sentimentPtr(s models.Sentiment) *models.Sentiment { return &s }

func seedReviews(t *testing.T, db *DB) {
	t.Helper()
	reviews := []models.Review{
		{BusinessName: "Cafe X", City: "Manila", ReviewRating: 5, ReviewText: "great  coffee", SentimentScore: sentimentPtr(models.SentimentPositive)},
		{BusinessName: "Cafe X", City: "Manila", ReviewRating: 2, ReviewText: "slow", SentimentScore: sentimentPtr(models.SentimentNegative)},
		{BusinessName: "Cafe X", City: "Manila", ReviewRating: 4, ReviewText: "fine"},
		{BusinessName: "Diner Y", City: "Cebu", ReviewRating: 3, ReviewText: "ok", SentimentScore: sentimentPtr(models.SentimentNeutral)},
	}
	n, err := db.InsertReviews(context.Background(), reviews)
	if err != nil {
		t.Fatalf("InsertReviews: %v", err)
	}
	if n != len(reviews) {
		t.Fatalf("InsertReviews = %d, want %d", n, len(reviews))
	}
}

func TestInsertReview_FillsDefaults(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	r := models.Review{BusinessName: "Cafe X", City: "Manila", ReviewRating: 5, ReviewText: "  amazing\tlatte  "}
	if err := db.InsertReview(ctx, &r); err != nil {
		t.Fatalf("InsertReview: %v", err)
	}
	if r.ID == "" || r.CreatedAt.IsZero() {
		t.Error("ID and CreatedAt must be assigned")
	}

	got, err := db.ListReviews(ctx, models.ReviewFilter{})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(got) != 1 || got[0].CleanReviewText != "amazing latte" {
		t.Errorf("ListReviews = %+v", got)
	}
	if got[0].SentimentScore != nil {
		t.Errorf("sentiment = %v, want nil", *got[0].SentimentScore)
	}
}

func TestReviewStats(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	seedReviews(t, db)

	tests := []struct {
		name     string
		business string
		want     models.ReviewStats
	}{
		{name: "all", want: models.ReviewStats{Total: 4, Positive: 1, Neutral: 1, Negative: 1, AvgRating: 3.5}},
		{name: "one business", business: "Cafe X", want: models.ReviewStats{Total: 3, Positive: 1, Negative: 1, AvgRating: 3.67}},
		{name: "unknown business", business: "Nowhere", want: models.ReviewStats{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ReviewStats(ctx, tt.business)
			if err != nil {
				t.Fatalf("ReviewStats: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReviewStats(%q) = %+v, want %+v", tt.business, got, tt.want)
			}
		})
	}
}

func TestReviewStats_CountsLegacyMixedCase(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	seedReviews(t, db)

	if _, err := db.conn.ExecContext(ctx, `UPDATE reviews SET sentiment_score = 'Positive' WHERE sentiment_score IS NULL`); err != nil {
		t.Fatalf("seed legacy label: %v", err)
	}
	got, err := db.ReviewStats(ctx, "Cafe X")
	if err != nil {
		t.Fatalf("ReviewStats: %v", err)
	}
	if got.Positive != 2 {
		t.Errorf("positive = %d, want 2", got.Positive)
	}
}

func TestReviewsWithoutSentimentAndUpdate(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	seedReviews(t, db)

	pending, err := db.ReviewsWithoutSentiment(ctx)
	if err != nil {
		t.Fatalf("ReviewsWithoutSentiment: %v", err)
	}
	if len(pending) != 1 || pending[0].ReviewText != "fine" {
		t.Fatalf("pending = %+v", pending)
	}

	conf := 0.91
	if err := db.UpdateSentiment(ctx, models.SentimentUpdate{ID: pending[0].ID, Sentiment: models.SentimentPositive, Confidence: &conf}); err != nil {
		t.Fatalf("UpdateSentiment: %v", err)
	}

	pending, err = db.ReviewsWithoutSentiment(ctx)
	if err != nil {
		t.Fatalf("ReviewsWithoutSentiment: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("still pending: %+v", pending)
	}

	err = db.UpdateSentiment(ctx, models.SentimentUpdate{ID: "missing", Sentiment: models.SentimentNeutral})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateSentiment(missing) err = %v, want ErrNotFound", err)
	}
}

func TestListReviews_FiltersAndOrder(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	fixedClock(db, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	seedReviews(t, db)

	all, err := db.ListReviews(ctx, models.ReviewFilter{})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(all) != 4 || all[0].BusinessName != "Diner Y" {
		t.Errorf("ListReviews not newest first: %+v", all)
	}

	neg, err := db.ListReviews(ctx, models.ReviewFilter{BusinessName: "Cafe X", Sentiment: models.SentimentNegative})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(neg) != 1 || neg[0].ReviewText != "slow" {
		t.Errorf("negative Cafe X reviews = %+v", neg)
	}

	limited, err := db.ListReviews(ctx, models.ReviewFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit 2 returned %d rows", len(limited))
	}
}

func TestInsertReviews_RollsBackOnFailure(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	reviews := []models.Review{
		{ID: "dup", BusinessName: "Cafe X", City: "Manila", ReviewRating: 5, ReviewText: "a"},
		{ID: "dup", BusinessName: "Cafe X", City: "Manila", ReviewRating: 4, ReviewText: "b"},
	}
	if _, err := db.InsertReviews(ctx, reviews); !errors.Is(err, ErrConflict) {
		t.Fatalf("InsertReviews err = %v, want ErrConflict", err)
	}

	got, err := db.ListReviews(ctx, models.ReviewFilter{})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("partial import left %d rows", len(got))
	}
}

func TestRoundRating(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float64
		want float64
	}{
		{3.666666, 3.67},
		{4, 4},
		{2.125, 2.13},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RoundRating(tt.in); got != tt.want {
			t.Errorf("RoundRating(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// Not parallel: swaps the global logger.
func TestListReviews_WarnsOnUnrecognizedSentiment(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(logging.NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	db := setupTestDB(t)
	ctx := context.Background()

	r := &models.Review{BusinessName: "Cafe X", City: "Manila", ReviewRating: 3, ReviewText: "so so"}
	if err := db.InsertReview(ctx, r); err != nil {
		t.Fatalf("InsertReview: %v", err)
	}
	if _, err := db.conn.ExecContext(ctx, `UPDATE reviews SET sentiment_score = 'mixed' WHERE id = $1`, r.ID); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	got, err := db.ListReviews(ctx, models.ReviewFilter{})
	if err != nil {
		t.Fatalf("ListReviews: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListReviews returned %d rows, want 1", len(got))
	}
	if got[0].SentimentScore != nil {
		t.Errorf("SentimentScore = %q, want nil", *got[0].SentimentScore)
	}

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"sentiment_score":"mixed"`) || !strings.Contains(out, r.ID) {
		t.Errorf("missing warning for unrecognized sentiment, got %s", out)
	}
}
