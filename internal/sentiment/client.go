// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package sentiment is the HTTP client for the external sentiment
// predictor.
//
// The predictor exposes three endpoints:
//
//	POST /predict        {"text": "..."}                     -> Prediction
//	POST /predict_batch  {"reviews": [{"id": "...", "text": "..."}]} -> {"results": [BatchResult]}
//	GET  /health                                             -> Health
//
// Calls go through a token bucket limiter and a circuit breaker. Transport
// failures and an open breaker surface as ErrUnavailable; non-2xx answers
// as *UpstreamError carrying the predictor's body.
package sentiment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/branchpulse/internal/config"
	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/metrics"
)

// maxBodySize caps how much of a predictor response is read.
const maxBodySize = 64 * 1024

// Endpoint paths.
const (
	EndpointPredict      = "/predict"
	EndpointPredictBatch = "/predict_batch"
	EndpointHealth       = "/health"
)

// Prediction is the /predict answer.
type Prediction struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Prediction *int    `json:"prediction,omitempty"`
	ModelType  string  `json:"model_type,omitempty"`
}

// BatchItem is one review sent to /predict_batch.
type BatchItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// BatchResult is one entry of the /predict_batch answer. Error is set when
// the predictor could not label the review.
type BatchResult struct {
	ID         string  `json:"id"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Prediction *int    `json:"prediction,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Health is the /health answer.
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelType   string `json:"model_type,omitempty"`
}

// Client talks to one predictor instance. Safe for concurrent use.
type Client struct {
	baseURL      string
	http         *http.Client
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[[]byte]
	timeout      time.Duration
	batchTimeout time.Duration
}

// NewClient builds a client from cfg. Zero timeouts fall back to 10s for
// single calls and 30s for batches.
func NewClient(cfg *config.PredictorConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 30 * time.Second
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		http:         &http.Client{},
		limiter:      rate.NewLimiter(limit, burst),
		breaker:      newBreaker(cfg.BreakerMaxFailures, breakerTimeout),
		timeout:      timeout,
		batchTimeout: batchTimeout,
	}
}

// Predict labels a single text.
func (c *Client) Predict(ctx context.Context, text string) (*Prediction, error) {
	var out Prediction
	if err := c.call(ctx, http.MethodPost, EndpointPredict, c.timeout, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PredictBatch labels several texts in one request.
func (c *Client) PredictBatch(ctx context.Context, items []BatchItem) ([]BatchResult, error) {
	if items == nil {
		items = []BatchItem{}
	}
	var out struct {
		Results []BatchResult `json:"results"`
	}
	req := struct {
		Reviews []BatchItem `json:"reviews"`
	}{Reviews: items}
	if err := c.call(ctx, http.MethodPost, EndpointPredictBatch, c.batchTimeout, req, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Health queries the predictor's health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.call(ctx, http.MethodGet, EndpointHealth, c.timeout, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// State returns the breaker state as "closed", "half-open" or "open".
func (c *Client) State() string {
	return stateToString(c.breaker.State())
}

func (c *Client) call(ctx context.Context, method, endpoint string, timeout time.Duration, in, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictorCall(endpoint, callResult(err), time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var payload []byte
	if in != nil {
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return unavailable(endpoint, err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.send(ctx, method, endpoint, payload)
	})
	recordBreakerResult(err)
	if err != nil {
		var upstream *UpstreamError
		switch {
		case errors.As(err, &upstream):
			logging.Warn().Str("endpoint", endpoint).Int("status", upstream.StatusCode).Msg("Predictor returned an error")
			return upstream
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return unavailable(endpoint, err)
		default:
			logging.Warn().Str("endpoint", endpoint).Err(err).Msg("Predictor unreachable")
			return unavailable(endpoint, err)
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// send performs the request. Transport errors are returned as is; a non-2xx
// status becomes *UpstreamError.
func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newUpstreamError(endpoint, resp.StatusCode, body)
	}
	return body, nil
}

func callResult(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.As(err, &upstream):
		return "upstream_error"
	default:
		return "error"
	}
}
