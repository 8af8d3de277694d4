// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package reviews is the review and sentiment gateway. It labels incoming
// reviews through the external predictor, stores them, catches up on
// unlabelled rows in batches, and reports aggregate statistics.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tomtom215/branchpulse/internal/cache"
	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/metrics"
	"github.com/tomtom215/branchpulse/internal/models"
	"github.com/tomtom215/branchpulse/internal/sentiment"
	"github.com/tomtom215/branchpulse/internal/validation"
)

var (
	// ErrBatchInProgress rejects a batch run while another is active.
	ErrBatchInProgress = errors.New("batch analysis already in progress")

	// ErrInvalidPrediction means the predictor answered 2xx with a label
	// outside positive, neutral and negative.
	ErrInvalidPrediction = errors.New("predictor returned an unrecognized sentiment")
)

// Store is the persistence the gateway needs.
type Store interface {
	InsertReview(ctx context.Context, r *models.Review) error
	ListReviews(ctx context.Context, f models.ReviewFilter) ([]models.Review, error)
	ReviewsWithoutSentiment(ctx context.Context) ([]models.Review, error)
	UpdateSentiment(ctx context.Context, u models.SentimentUpdate) error
	ReviewStats(ctx context.Context, businessName string) (models.ReviewStats, error)
}

// Predictor labels review text.
type Predictor interface {
	Predict(ctx context.Context, text string) (*sentiment.Prediction, error)
	PredictBatch(ctx context.Context, items []sentiment.BatchItem) ([]sentiment.BatchResult, error)
	Health(ctx context.Context) (*sentiment.Health, error)
}

// Submission is a review posted for analysis.
type Submission struct {
	ReviewText       string   `json:"reviewText" validate:"notblank,max=10000"`
	BusinessName     string   `json:"businessName" validate:"notblank,max=255"`
	BusinessCategory string   `json:"businessCategory" validate:"max=100"`
	City             string   `json:"city" validate:"notblank,max=100"`
	Address          string   `json:"address" validate:"max=500"`
	ReviewerName     string   `json:"reviewerName" validate:"max=255"`
	ReviewRating     int      `json:"reviewRating" validate:"gte=1,lte=5"`
	ReviewDate       string   `json:"reviewDate" validate:"omitempty,datetime=2006-01-02"`
	MealType         string   `json:"mealType" validate:"max=50"`
	PricePerPerson   *float64 `json:"pricePerPerson" validate:"omitempty,gte=0"`
}

// AnalyzeResult is returned by AnalyzeReview.
type AnalyzeResult struct {
	Message    string           `json:"message"`
	Sentiment  models.Sentiment `json:"sentiment"`
	Confidence float64          `json:"confidence"`
	Data       *models.Review   `json:"data"`
}

// BatchResult is returned by BatchAnalyze.
type BatchResult struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
	Updated int    `json:"updated"`
}

// Service implements the gateway operations. Safe for concurrent use.
type Service struct {
	store     Store
	predictor Predictor
	now       func() time.Time

	// stats is nil when caching is disabled. Keys are trimmed business
	// names; "" holds the all-business aggregate.
	stats *cache.LRU[models.ReviewStats]

	batchRunning atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithStatsCache serves Stats from c until a write through the gateway
// invalidates the affected entries.
func WithStatsCache(c *cache.LRU[models.ReviewStats]) Option {
	return func(s *Service) {
		s.stats = c
	}
}

// NewService wires the gateway to its store and predictor.
func NewService(store Store, predictor Predictor, opts ...Option) *Service {
	s := &Service{
		store:     store,
		predictor: predictor,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeReview labels the submission and stores it. Nothing is written
// when the predictor call fails.
func (s *Service) AnalyzeReview(ctx context.Context, sub Submission) (*AnalyzeResult, error) {
	if verr := validation.ValidateStruct(sub); verr != nil {
		return nil, verr
	}

	pred, err := s.predictor.Predict(ctx, sub.ReviewText)
	if err != nil {
		return nil, fmt.Errorf("analyze review: %w", err)
	}
	label, ok := labelOf(pred.Sentiment, pred.Prediction)
	if !ok {
		logging.Ctx(ctx).Warn().Str("sentiment", pred.Sentiment).Msg("Predictor returned an unknown label")
		return nil, fmt.Errorf("analyze review: %w", ErrInvalidPrediction)
	}

	now := s.now()
	confidence := pred.Confidence
	r := &models.Review{
		BusinessName:        strings.TrimSpace(sub.BusinessName),
		BusinessCategory:    sub.BusinessCategory,
		Address:             sub.Address,
		City:                strings.TrimSpace(sub.City),
		ReviewerName:        sub.ReviewerName,
		ReviewRating:        sub.ReviewRating,
		ReviewText:          sub.ReviewText,
		CleanReviewText:     models.CleanText(sub.ReviewText),
		ReviewDate:          sub.ReviewDate,
		MealType:            sub.MealType,
		PricePerPerson:      sub.PricePerPerson,
		SentimentScore:      &label,
		SentimentConfidence: &confidence,
		CreatedAt:           now,
	}
	r.StampTime(now)

	if err := s.store.InsertReview(ctx, r); err != nil {
		return nil, fmt.Errorf("store analyzed review: %w", err)
	}
	metrics.RecordReviewAnalyzed("single", label.String())
	s.invalidateStats(r.BusinessName)

	return &AnalyzeResult{
		Message:    "Review analyzed and saved",
		Sentiment:  label,
		Confidence: confidence,
		Data:       r,
	}, nil
}

// BatchAnalyze labels every review that has no sentiment yet with a single
// predictor call. Results the predictor flagged, or whose label cannot be
// parsed, are skipped. A failed row update is logged and the run continues.
func (s *Service) BatchAnalyze(ctx context.Context) (*BatchResult, error) {
	if !s.batchRunning.CompareAndSwap(false, true) {
		metrics.RecordBatchAnalyze("rejected", 0, 0, 0, 0)
		return nil, ErrBatchInProgress
	}
	defer s.batchRunning.Store(false)

	log := logging.Ctx(ctx)

	pending, err := s.store.ReviewsWithoutSentiment(ctx)
	if err != nil {
		metrics.RecordBatchAnalyze("error", 0, 0, 0, 0)
		return nil, fmt.Errorf("load unlabelled reviews: %w", err)
	}
	if len(pending) == 0 {
		metrics.RecordBatchAnalyze("empty", 0, 0, 0, 0)
		return &BatchResult{Message: "No reviews to analyze", Total: 0, Updated: 0}, nil
	}

	items := make([]sentiment.BatchItem, 0, len(pending))
	known := make(map[string]struct{}, len(pending))
	for i := range pending {
		if strings.TrimSpace(pending[i].ReviewText) == "" {
			continue
		}
		items = append(items, sentiment.BatchItem{ID: pending[i].ID, Text: pending[i].ReviewText})
		known[pending[i].ID] = struct{}{}
	}

	var results []sentiment.BatchResult
	if len(items) > 0 {
		results, err = s.predictor.PredictBatch(ctx, items)
		if err != nil {
			metrics.RecordBatchAnalyze("error", len(pending), 0, 0, 0)
			return nil, fmt.Errorf("batch predict: %w", err)
		}
	}

	var updated, skipped, failed int
	for _, res := range results {
		if _, ok := known[res.ID]; !ok || res.Error != "" {
			skipped++
			continue
		}
		label, ok := labelOf(res.Sentiment, res.Prediction)
		if !ok {
			skipped++
			continue
		}
		// One write per row; repeated results for the same id are skipped.
		delete(known, res.ID)
		confidence := res.Confidence
		if err := s.store.UpdateSentiment(ctx, models.SentimentUpdate{ID: res.ID, Sentiment: label, Confidence: &confidence}); err != nil {
			failed++
			log.Warn().Err(err).Str("review_id", res.ID).Msg("Failed to store batch sentiment")
			continue
		}
		updated++
		metrics.RecordReviewAnalyzed("batch", label.String())
	}

	if updated > 0 && s.stats != nil {
		s.stats.Clear()
	}
	metrics.RecordBatchAnalyze("success", len(pending), updated, skipped, failed)
	log.Info().
		Int("total", len(pending)).
		Int("updated", updated).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("Batch sentiment analysis finished")

	return &BatchResult{
		Message: fmt.Sprintf("Analyzed %d reviews successfully", updated),
		Total:   len(pending),
		Updated: updated,
	}, nil
}

// Stats aggregates sentiment counts, optionally for one business.
func (s *Service) Stats(ctx context.Context, businessName string) (models.ReviewStats, error) {
	name := strings.TrimSpace(businessName)
	if s.stats != nil {
		if cached, ok := s.stats.Get(name); ok {
			metrics.RecordCacheLookup("review_stats", true)
			return cached, nil
		}
		metrics.RecordCacheLookup("review_stats", false)
	}

	stats, err := s.store.ReviewStats(ctx, name)
	if err != nil {
		return models.ReviewStats{}, fmt.Errorf("review stats: %w", err)
	}
	if s.stats != nil {
		s.stats.Add(name, stats)
	}
	return stats, nil
}

// invalidateStats drops the entries a new review for business affects.
func (s *Service) invalidateStats(business string) {
	if s.stats == nil {
		return
	}
	s.stats.Remove(business)
	s.stats.Remove("")
}

// List returns stored reviews newest first.
func (s *Service) List(ctx context.Context, f models.ReviewFilter) ([]models.Review, error) {
	out, err := s.store.ListReviews(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

// PredictorHealth reports the predictor's own health answer.
func (s *Service) PredictorHealth(ctx context.Context) (*sentiment.Health, error) {
	return s.predictor.Health(ctx)
}

// labelOf prefers the textual label and falls back to the class index.
func labelOf(label string, class *int) (models.Sentiment, bool) {
	if s, ok := models.ParseSentiment(label); ok {
		return s, true
	}
	if class != nil {
		return models.SentimentFromPrediction(*class)
	}
	return "", false
}
