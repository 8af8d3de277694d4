// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/branchpulse/internal/models"
	"github.com/tomtom215/branchpulse/internal/reviews"
	"github.com/tomtom215/branchpulse/internal/validation"
)

// AnalyzeReview handles POST /api/analyze-review.
func (h *Handler) AnalyzeReview(w http.ResponseWriter, r *http.Request) {
	var sub reviews.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.reviews.AnalyzeReview(r.Context(), sub)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(res)
}

// AnalyzeAllReviews handles POST /api/reviews/analyze-all.
func (h *Handler) AnalyzeAllReviews(w http.ResponseWriter, r *http.Request) {
	res, err := h.reviews.BatchAnalyze(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(res)
}

// ListReviews handles GET /api/reviews?business_name=&sentiment=&limit=.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	f, err := parseReviewFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out, err := h.reviews.List(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(out, len(out))
}

// ReviewStats handles GET /api/reviews/stats?business_name=.
func (h *Handler) ReviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reviews.Stats(r.Context(), r.URL.Query().Get("business_name"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(stats)
}

func parseReviewFilter(r *http.Request) (models.ReviewFilter, error) {
	q := r.URL.Query()
	f := models.ReviewFilter{BusinessName: strings.TrimSpace(q.Get("business_name"))}

	if raw := strings.TrimSpace(q.Get("sentiment")); raw != "" {
		s, ok := models.ParseSentiment(raw)
		if !ok {
			return f, validation.NewRequestValidationError("sentiment", "sentiment",
				"sentiment must be one of positive, neutral, negative")
		}
		f.Sentiment = s
	}

	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		return f, err
	}
	f.Limit = limit
	return f, nil
}
