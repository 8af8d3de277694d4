// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"context"
	"net/http"
	"time"
)

// Version is reported by the health endpoints. Set at build time with
// -ldflags "-X github.com/tomtom215/branchpulse/internal/api.Version=...".
var Version = "dev"

const readinessTimeout = 3 * time.Second

// HealthStatus is the liveness answer.
type HealthStatus struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime_seconds"`
}

// ComponentStatus is one dependency in the readiness answer.
type ComponentStatus struct {
	Healthy bool   `json:"healthy"`
	Detail  string `json:"detail,omitempty"`
}

// ReadinessStatus is the readiness answer. Status is "ready" when every
// dependency is healthy, "degraded" when only the predictor is down, and
// "unavailable" when the database is down.
type ReadinessStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}

// Ready handles GET /api/health/ready. Only a database failure answers
// 503; a missing predictor still lets todos, concerns and branches work.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	out := ReadinessStatus{Status: "ready", Components: map[string]ComponentStatus{}}

	if err := h.store.Ping(ctx); err != nil {
		out.Status = "unavailable"
		out.Components["database"] = ComponentStatus{Healthy: false, Detail: "ping failed"}
	} else {
		out.Components["database"] = ComponentStatus{Healthy: true}
	}

	health, err := h.reviews.PredictorHealth(ctx)
	switch {
	case err != nil:
		out.Components["predictor"] = ComponentStatus{Healthy: false, Detail: "unreachable"}
	case !health.ModelLoaded:
		out.Components["predictor"] = ComponentStatus{Healthy: false, Detail: "model not loaded"}
	default:
		out.Components["predictor"] = ComponentStatus{Healthy: true, Detail: health.ModelType}
	}
	if out.Status == "ready" && !out.Components["predictor"].Healthy {
		out.Status = "degraded"
	}

	rw := NewResponseWriter(w, r)
	if out.Status == "unavailable" {
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: out, Meta: rw.meta()})
		return
	}
	rw.Success(out)
}
