// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/branchpulse/internal/database/query"
	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/models"
)

const (
	// DefaultReviewLimit applies when a listing does not ask for a size.
	DefaultReviewLimit = 100

	// MaxReviewLimit bounds a single listing.
	MaxReviewLimit = 1000
)

const reviewColumns = `id, business_name, business_category, address, city, latitude, longitude,
	reviewer_name, review_rating, review_text, clean_review_text, review_date, meal_type,
	price_per_person, sentiment_score, sentiment_confidence, year, month, day_of_week, hour, created_at`

const insertReviewSQL = `INSERT INTO reviews (` + reviewColumns + `) VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

func scanReview(s rowScanner) (models.Review, error) {
	var (
		r         models.Review
		sentiment *string
	)
	err := s.Scan(&r.ID, &r.BusinessName, &r.BusinessCategory, &r.Address, &r.City, &r.Latitude, &r.Longitude,
		&r.ReviewerName, &r.ReviewRating, &r.ReviewText, &r.CleanReviewText, &r.ReviewDate, &r.MealType,
		&r.PricePerPerson, &sentiment, &r.SentimentConfidence, &r.Year, &r.Month, &r.DayOfWeek, &r.Hour, &r.CreatedAt)
	if err != nil {
		return r, err
	}
	// Rows written before normalization may carry mixed case.
	if sentiment != nil {
		if s, ok := models.ParseSentiment(*sentiment); ok {
			r.SentimentScore = &s
		} else {
			storeLog := logging.WithComponent("database")
			storeLog.Warn().
				Str("review_id", r.ID).
				Str("sentiment_score", *sentiment).
				Msg("Unrecognized stored sentiment read back as unlabeled")
		}
	}
	return r, nil
}

func reviewArgs(r *models.Review) []interface{} {
	var sentiment interface{}
	if r.SentimentScore != nil {
		sentiment = string(*r.SentimentScore)
	}
	return []interface{}{
		r.ID, r.BusinessName, r.BusinessCategory, r.Address, r.City, nullFloat(r.Latitude), nullFloat(r.Longitude),
		r.ReviewerName, r.ReviewRating, r.ReviewText, r.CleanReviewText, r.ReviewDate, r.MealType,
		nullFloat(r.PricePerPerson), sentiment, nullFloat(r.SentimentConfidence),
		r.Year, r.Month, r.DayOfWeek, r.Hour, r.CreatedAt,
	}
}

// prepareReview assigns id and creation time when unset.
func (db *DB) prepareReview(r *models.Review) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = db.now()
	}
	if r.CleanReviewText == "" {
		r.CleanReviewText = models.CleanText(r.ReviewText)
	}
}

// InsertReview stores one review, filling ID and CreatedAt when empty.
func (db *DB) InsertReview(ctx context.Context, r *models.Review) (err error) {
	defer db.observe("INSERT", "reviews", time.Now(), &err)

	db.prepareReview(r)
	_, err = db.conn.ExecContext(ctx, insertReviewSQL, reviewArgs(r)...)
	return translateError("insert review", err)
}

// InsertReviews stores reviews in a single transaction. Either all rows
// are written or none.
func (db *DB) InsertReviews(ctx context.Context, reviews []models.Review) (_ int, err error) {
	defer db.observe("INSERT", "reviews", time.Now(), &err)

	if len(reviews) == 0 {
		return 0, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, translateError("begin review import", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertReviewSQL)
	if err != nil {
		return 0, translateError("prepare review import", err)
	}
	defer closeWithLog(stmt, "statement")

	for i := range reviews {
		db.prepareReview(&reviews[i])
		if _, err := stmt.ExecContext(ctx, reviewArgs(&reviews[i])...); err != nil {
			return 0, translateError(fmt.Sprintf("import review %d", i+1), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, translateError("commit review import", err)
	}
	committed = true
	return len(reviews), nil
}

// ListReviews returns reviews newest first. Limit defaults to
// DefaultReviewLimit and is capped at MaxReviewLimit.
func (db *DB) ListReviews(ctx context.Context, f models.ReviewFilter) (out []models.Review, err error) {
	defer db.observe("SELECT", "reviews", time.Now(), &err)

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultReviewLimit
	}
	if limit > MaxReviewLimit {
		limit = MaxReviewLimit
	}

	wb := query.NewWhereBuilder().AddEquals("business_name", f.BusinessName)
	if f.Sentiment != "" {
		wb.AddClause("LOWER(sentiment_score) = ?", string(f.Sentiment))
	}
	where, args := wb.BuildWithPrefix()
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM reviews %s ORDER BY created_at DESC, id LIMIT $%d`, reviewColumns, where, len(args)),
		args...)
	if err != nil {
		return nil, translateError("list reviews", err)
	}
	return collectReviews(rows)
}

// ReviewsWithoutSentiment returns every review still awaiting a label,
// oldest first.
func (db *DB) ReviewsWithoutSentiment(ctx context.Context) (_ []models.Review, err error) {
	defer db.observe("SELECT", "reviews", time.Now(), &err)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE sentiment_score IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, translateError("list unlabelled reviews", err)
	}
	return collectReviews(rows)
}

type reviewRows interface {
	rowScanner
	Next() bool
	Err() error
	Close() error
}

func collectReviews(rows reviewRows) ([]models.Review, error) {
	defer closeWithLog(rows, "rows")

	out := []models.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, translateError("scan review", err)
		}
		out = append(out, r)
	}
	return out, translateError("iterate reviews", rows.Err())
}

// UpdateSentiment stores the label of one review.
func (db *DB) UpdateSentiment(ctx context.Context, u models.SentimentUpdate) (err error) {
	defer db.observe("UPDATE", "reviews", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE reviews SET sentiment_score = $1, sentiment_confidence = $2 WHERE id = $3`,
		string(u.Sentiment), nullFloat(u.Confidence), u.ID)
	if err != nil {
		return translateError("update sentiment", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translateError("update sentiment", ErrNotFound)
	}
	return nil
}

// ReviewStats counts reviews per sentiment and averages their rating,
// optionally for one business. AvgRating is rounded to two decimals and is
// 0 when nothing matches.
func (db *DB) ReviewStats(ctx context.Context, businessName string) (stats models.ReviewStats, err error) {
	defer db.observe("SELECT", "reviews", time.Now(), &err)

	where, args := query.NewWhereBuilder().AddEquals("business_name", businessName).BuildWithPrefix()

	var avg *float64
	err = db.conn.QueryRowContext(ctx, `SELECT
			COUNT(*),
			COUNT(CASE WHEN LOWER(sentiment_score) = 'positive' THEN 1 END),
			COUNT(CASE WHEN LOWER(sentiment_score) = 'neutral' THEN 1 END),
			COUNT(CASE WHEN LOWER(sentiment_score) = 'negative' THEN 1 END),
			CAST(AVG(review_rating) AS FLOAT8)
		FROM reviews `+where, args...).
		Scan(&stats.Total, &stats.Positive, &stats.Neutral, &stats.Negative, &avg)
	if err != nil {
		return models.ReviewStats{}, translateError("review stats", err)
	}
	if avg != nil {
		stats.AvgRating = RoundRating(*avg)
	}
	return stats, nil
}

// RoundRating rounds to two decimal places.
func RoundRating(v float64) float64 {
	return math.Round(v*100) / 100
}
