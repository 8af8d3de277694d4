// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

//go:build integration

package testinfra

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// MockPredictor serves /predict, /predict_batch and /health. Texts
// containing a word from Negative are labelled negative; everything else
// is positive.
type MockPredictor struct {
	Server *httptest.Server

	// Negative lists lowercase words that make a text negative.
	Negative []string

	mu    sync.Mutex
	calls map[string]int
}

// NewMockPredictor starts the server and closes it when the test ends.
func NewMockPredictor(t *testing.T) *MockPredictor {
	t.Helper()

	m := &MockPredictor{Negative: []string{"cold", "rude", "awful"}, calls: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", m.predict)
	mux.HandleFunc("POST /predict_batch", m.predictBatch)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		m.record("/health")
		writeJSON(w, map[string]interface{}{"status": "ok", "model_loaded": true, "model_type": "mock"})
	})
	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the base URL to configure as SENTIMENT_API_URL.
func (m *MockPredictor) URL() string {
	return m.Server.URL
}

// Calls returns how often path was requested.
func (m *MockPredictor) Calls(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[path]
}

func (m *MockPredictor) record(path string) {
	m.mu.Lock()
	m.calls[path]++
	m.mu.Unlock()
}

func (m *MockPredictor) label(text string) (string, int) {
	lower := strings.ToLower(text)
	for _, w := range m.Negative {
		if strings.Contains(lower, w) {
			return "negative", 0
		}
	}
	return "positive", 2
}

func (m *MockPredictor) predict(w http.ResponseWriter, r *http.Request) {
	m.record("/predict")
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"error": "text is required"})
		return
	}
	label, class := m.label(body.Text)
	writeJSON(w, map[string]interface{}{
		"sentiment": label, "confidence": 0.91, "prediction": class, "model_type": "mock",
	})
}

func (m *MockPredictor) predictBatch(w http.ResponseWriter, r *http.Request) {
	m.record("/predict_batch")
	var body struct {
		Reviews []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"reviews"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"error": "invalid body"})
		return
	}

	results := make([]map[string]interface{}, 0, len(body.Reviews))
	for _, rv := range body.Reviews {
		label, class := m.label(rv.Text)
		results = append(results, map[string]interface{}{
			"id": rv.ID, "sentiment": label, "confidence": 0.88, "prediction": class,
		})
	}
	writeJSON(w, map[string]interface{}{"results": results})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
