// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package services

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/reviews"
)

// BatchAnalyzer labels every review still missing a sentiment.
type BatchAnalyzer interface {
	BatchAnalyze(ctx context.Context) (*reviews.BatchResult, error)
}

// BatchAnalyzeService calls BatchAnalyze every interval. Failed runs are
// logged and retried on the next tick, so predictor outages never make the
// supervisor restart the service.
type BatchAnalyzeService struct {
	analyzer BatchAnalyzer
	interval time.Duration
	name     string
}

// NewBatchAnalyzeService creates the scheduler. interval must be positive.
func NewBatchAnalyzeService(analyzer BatchAnalyzer, interval time.Duration) *BatchAnalyzeService {
	return &BatchAnalyzeService{
		analyzer: analyzer,
		interval: interval,
		name:     "batch-analyze",
	}
}

// Serve implements suture.Service.
func (s *BatchAnalyzeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *BatchAnalyzeService) runOnce(ctx context.Context) {
	start := time.Now()
	res, err := s.analyzer.BatchAnalyze(ctx)
	switch {
	case errors.Is(err, reviews.ErrBatchInProgress):
		logging.Debug().Msg("Scheduled batch analysis skipped, a run is already in progress")
	case errors.Is(err, context.Canceled):
	case err != nil:
		logging.Warn().Err(err).Msg("Scheduled batch analysis failed")
	case res.Total > 0:
		logging.Info().
			Int("total", res.Total).
			Int("updated", res.Updated).
			Dur("duration", time.Since(start)).
			Msg("Scheduled batch analysis completed")
	}
}

func (s *BatchAnalyzeService) String() string {
	return s.name
}
