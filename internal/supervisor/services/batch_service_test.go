// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/branchpulse/internal/reviews"
)

type fakeAnalyzer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeAnalyzer) BatchAnalyze(context.Context) (*reviews.BatchResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &reviews.BatchResult{Message: "Analyzed 1 reviews successfully", Total: 1, Updated: 1}, nil
}

var _ suture.Service = (*BatchAnalyzeService)(nil)

func TestBatchAnalyzeService_RunsEveryInterval(t *testing.T) {
	t.Parallel()

	analyzer := &fakeAnalyzer{}
	svc := NewBatchAnalyzeService(analyzer, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for analyzer.calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d runs within 2s", analyzer.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
}

func TestBatchAnalyzeService_ErrorsDoNotStopTheLoop(t *testing.T) {
	t.Parallel()

	for _, runErr := range []error{reviews.ErrBatchInProgress, errors.New("predictor unavailable")} {
		analyzer := &fakeAnalyzer{err: runErr}
		svc := NewBatchAnalyzeService(analyzer, 5*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		err := svc.Serve(ctx)
		cancel()

		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("%v: Serve = %v, want deadline exceeded", runErr, err)
		}
		if analyzer.calls.Load() < 2 {
			t.Errorf("%v: loop stopped after %d calls", runErr, analyzer.calls.Load())
		}
	}
}

func TestBatchAnalyzeService_String(t *testing.T) {
	t.Parallel()
	if got := NewBatchAnalyzeService(&fakeAnalyzer{}, time.Minute).String(); got != "batch-analyze" {
		t.Errorf("String() = %q", got)
	}
}
