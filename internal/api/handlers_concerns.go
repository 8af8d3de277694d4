// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/branchpulse/internal/models"
	"github.com/tomtom215/branchpulse/internal/validation"
)

// ListConcerns handles GET /api/concerns?branch_id=&status=.
func (h *Handler) ListConcerns(w http.ResponseWriter, r *http.Request) {
	branchID, err := requiredQuery(r, "branch_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := requireBranchAccess(r, branchID); err != nil {
		respondError(w, r, err)
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	switch status {
	case "", models.ConcernOpen, models.ConcernInProgress, models.ConcernResolved:
	default:
		respondError(w, r, validation.NewRequestValidationError("status", "oneof",
			"status must be one of open, in_progress, resolved"))
		return
	}

	concerns, err := h.store.GetConcernsByBranch(r.Context(), branchID, status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(concerns, len(concerns))
}

// CreateConcern handles POST /api/concerns.
func (h *Handler) CreateConcern(w http.ResponseWriter, r *http.Request) {
	var req CreateConcernRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	in := req.toModel()
	if err := requireBranchAccess(r, in.BranchID); err != nil {
		respondError(w, r, err)
		return
	}

	concern, err := h.store.AddConcern(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(concern)
}

// UpdateConcern handles PUT /api/concerns/{id}.
func (h *Handler) UpdateConcern(w http.ResponseWriter, r *http.Request) {
	concern, ok := h.ownedConcern(w, r)
	if !ok {
		return
	}
	var req UpdateConcernRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.store.UpdateConcern(r.Context(), concern.ID, req.toModel())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(updated)
}

// DeleteConcern handles DELETE /api/concerns/{id}.
func (h *Handler) DeleteConcern(w http.ResponseWriter, r *http.Request) {
	concern, ok := h.ownedConcern(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteConcern(r.Context(), concern.ID); err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]bool{"deleted": true})
}

// ownedConcern loads the {id} concern and checks branch access. It writes
// the error response itself and reports false on failure.
func (h *Handler) ownedConcern(w http.ResponseWriter, r *http.Request) (*models.Concern, bool) {
	id, err := pathParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return nil, false
	}
	concern, err := h.store.GetConcern(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return nil, false
	}
	if err := requireBranchAccess(r, concern.BranchID); err != nil {
		respondError(w, r, err)
		return nil, false
	}
	return concern, true
}
