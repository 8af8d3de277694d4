// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package models

import (
	"strings"
	"time"
)

// Review is a customer review of a business. SentimentScore is nil until
// the predictor has labelled it, which makes the row eligible for batch
// analysis.
type Review struct {
	ID                  string     `json:"id"`
	BusinessName        string     `json:"business_name"`
	BusinessCategory    string     `json:"business_category"`
	Address             string     `json:"address"`
	City                string     `json:"city"`
	Latitude            *float64   `json:"latitude"`
	Longitude           *float64   `json:"longitude"`
	ReviewerName        string     `json:"reviewer_name"`
	ReviewRating        int        `json:"review_rating"`
	ReviewText          string     `json:"review_text"`
	CleanReviewText     string     `json:"clean_review_text"`
	ReviewDate          string     `json:"review_date"` // YYYY-MM-DD
	MealType            string     `json:"meal_type"`
	PricePerPerson      *float64   `json:"price_per_person"`
	SentimentScore      *Sentiment `json:"sentiment_score"`
	SentimentConfidence *float64   `json:"sentiment_confidence"`
	Year                int        `json:"year"`
	Month               int        `json:"month"`
	DayOfWeek           string     `json:"day_of_week"`
	Hour                int        `json:"hour"`
	CreatedAt           time.Time  `json:"created_at"`
}

// StampTime fills the fields derived from the submission time.
func (r *Review) StampTime(t time.Time) {
	r.Year = t.Year()
	r.Month = int(t.Month())
	r.DayOfWeek = t.Weekday().String()
	r.Hour = t.Hour()
	if r.ReviewDate == "" {
		r.ReviewDate = t.Format(time.DateOnly)
	}
}

// CleanText collapses runs of whitespace and trims the ends.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ReviewFilter narrows review queries. Zero values mean no filter.
type ReviewFilter struct {
	BusinessName string
	Sentiment    Sentiment
	Limit        int
}

// ReviewStats aggregates sentiment counts and the average rating.
type ReviewStats struct {
	Total     int     `json:"total"`
	Positive  int     `json:"positive"`
	Neutral   int     `json:"neutral"`
	Negative  int     `json:"negative"`
	AvgRating float64 `json:"avgRating"`
}

// SentimentUpdate labels one review during batch analysis.
type SentimentUpdate struct {
	ID         string
	Sentiment  Sentiment
	Confidence *float64
}
