// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "branchpulse_db_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchpulse_db_query_errors_total",
			Help: "Total number of failed store queries",
		},
		[]string{"operation", "table", "error_type"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchpulse_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "branchpulse_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "branchpulse_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Sentiment predictor
	PredictorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchpulse_predictor_requests_total",
			Help: "Outbound calls to the sentiment predictor",
		},
		[]string{"endpoint", "result"}, // result: success, unavailable, upstream_error, error
	)

	PredictorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "branchpulse_predictor_request_duration_seconds",
			Help:    "Latency of sentiment predictor calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Review pipeline
	ReviewsAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchpulse_reviews_analyzed_total",
			Help: "Reviews labelled by the predictor, by resulting sentiment",
		},
		[]string{"source", "sentiment"}, // source: single, batch
	)

	BatchAnalyzeRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchpulse_batch_analyze_runs_total",
			Help: "Batch analyze invocations by outcome",
		},
		[]string{"result"}, // result: success, empty, rejected, error
	)

	BatchAnalyzeRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchpulse_batch_analyze_rows_total",
			Help: "Rows seen by batch analyze",
		},
		[]string{"outcome"}, // outcome: fetched, updated, skipped, failed
	)

	// In-process caches
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchpulse_cache_lookups_total",
			Help: "Cache lookups by cache name and result",
		},
		[]string{"cache", "result"}, // result: hit, miss
	)

	// Auth provider
	IdentityRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branchpulse_identity_requests_total",
			Help: "Calls to the external auth provider",
		},
		[]string{"operation", "result"},
	)
)

// RecordDBQuery records the duration and outcome of a store query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, classifyError(err)).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPredictorCall records one outbound predictor request.
func RecordPredictorCall(endpoint, result string, duration time.Duration) {
	PredictorRequests.WithLabelValues(endpoint, result).Inc()
	PredictorDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordReviewAnalyzed counts one labelled review.
func RecordReviewAnalyzed(source, sentiment string) {
	ReviewsAnalyzed.WithLabelValues(source, sentiment).Inc()
}

// RecordBatchAnalyze records the outcome of one batch run.
func RecordBatchAnalyze(result string, fetched, updated, skipped, failed int) {
	BatchAnalyzeRuns.WithLabelValues(result).Inc()
	BatchAnalyzeRows.WithLabelValues("fetched").Add(float64(fetched))
	BatchAnalyzeRows.WithLabelValues("updated").Add(float64(updated))
	BatchAnalyzeRows.WithLabelValues("skipped").Add(float64(skipped))
	BatchAnalyzeRows.WithLabelValues("failed").Add(float64(failed))
}

// RecordCacheLookup counts one cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordIdentityCall records one auth provider call.
func RecordIdentityCall(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	IdentityRequests.WithLabelValues(operation, result).Inc()
}

// classifyError keeps the error_type label to a small fixed set.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no rows"):
		return "not_found"
	case strings.Contains(msg, "duplicate"), strings.Contains(msg, "unique"), strings.Contains(msg, "constraint"):
		return "constraint"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "broken pipe"):
		return "connection"
	case strings.Contains(msg, "syntax"):
		return "syntax"
	default:
		return "other"
	}
}
