// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package sentiment

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrUnavailable means the predictor could not be reached: the connection
// failed, the call timed out, or the circuit breaker is open.
var ErrUnavailable = errors.New("sentiment predictor unavailable")

// UpstreamError is a non-2xx answer from the predictor.
type UpstreamError struct {
	Endpoint   string
	StatusCode int

	// Payload is the predictor's response body. It is valid JSON when the
	// predictor answered with JSON, otherwise a JSON string of the raw text.
	Payload json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("sentiment predictor %s returned HTTP %d", e.Endpoint, e.StatusCode)
}

// Message extracts the predictor's "error" field when present.
func (e *UpstreamError) Message() string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(e.Payload, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return e.Error()
}

// serverSide reports whether the failure should count against the breaker.
func (e *UpstreamError) serverSide() bool {
	return e.StatusCode >= 500
}

func newUpstreamError(endpoint string, status int, body []byte) *UpstreamError {
	payload := json.RawMessage(body)
	if len(body) == 0 || !json.Valid(body) {
		quoted, _ := json.Marshal(string(body))
		payload = quoted
	}
	return &UpstreamError{Endpoint: endpoint, StatusCode: status, Payload: payload}
}

func unavailable(endpoint string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, endpoint, err)
}
