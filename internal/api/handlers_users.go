// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"net/http"

	"github.com/tomtom215/branchpulse/internal/identity"
)

// requireIdentity writes 503 and reports false when no provider is wired.
func (h *Handler) requireIdentity(w http.ResponseWriter, r *http.Request) bool {
	if h.identity == nil {
		respondError(w, r, ErrIdentityDisabled)
		return false
	}
	return true
}

// SignUp handles POST /api/signup.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	if !h.requireIdentity(w, r) {
		return
	}
	var req identity.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.identity.SignUp(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(res)
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.requireIdentity(w, r) {
		return
	}
	var req identity.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	session, err := h.identity.SignIn(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(session)
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireIdentity(w, r) {
		return
	}
	users, err := h.identity.ListUsers(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(users, len(users))
}

// UserStats handles GET /api/users/stats.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireIdentity(w, r) {
		return
	}
	stats, err := h.identity.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(stats)
}

// GetUser handles GET /api/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireIdentity(w, r) {
		return
	}
	id, err := pathParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.identity.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(user)
}

// UpdateUser handles PUT /api/users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireIdentity(w, r) {
		return
	}
	id, err := pathParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req identity.UserUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.identity.UpdateUser(r.Context(), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(user)
}

// DeleteUser handles DELETE /api/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireIdentity(w, r) {
		return
	}
	id, err := pathParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.identity.DeleteUser(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]bool{"deleted": true})
}
