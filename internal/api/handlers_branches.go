// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/branchpulse/internal/auth"
	"github.com/tomtom215/branchpulse/internal/database"
	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/validation"
)

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// equalizeLoginTiming runs one bcrypt comparison so unknown branch ids take
// as long to reject as wrong passwords.
func equalizeLoginTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = auth.HashPassword("branchpulse-timing", 0)
	})
	_ = auth.CheckPassword(dummyHash, password)
}

func validYear(y *int) error {
	if y != nil && (*y < 1800 || *y > time.Now().Year()) {
		return validation.NewRequestValidationError("yearEstablished", "range",
			"yearEstablished must be between 1800 and the current year")
	}
	return nil
}

// RegisterBranch handles POST /api/register-branch.
func (h *Handler) RegisterBranch(w http.ResponseWriter, r *http.Request) {
	var req RegisterBranchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validYear(req.YearEstablished.Value); err != nil {
		respondError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.config.Security.BcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			err = validation.NewRequestValidationError("password", "max", err.Error())
		}
		respondError(w, r, err)
		return
	}

	branch := req.toModel(hash)
	if err := h.store.CreateBranch(r.Context(), branch); err != nil {
		respondError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("branch_id", sanitizeLogValue(branch.BranchID)).Msg("Branch registered")
	NewResponseWriter(w, r).Created(branch)
}

// BranchLogin handles POST /api/branch-login.
func (h *Handler) BranchLogin(w http.ResponseWriter, r *http.Request) {
	if h.jwtManager == nil {
		respondError(w, r, ErrTokensDisabled)
		return
	}
	var req BranchLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	branchID := strings.TrimSpace(req.BranchID)

	branch, err := h.store.GetBranch(r.Context(), branchID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		equalizeLoginTiming(req.Password)
		respondError(w, r, auth.ErrInvalidCredentials)
		return
	case err != nil:
		respondError(w, r, err)
		return
	}
	if err := auth.CheckPassword(branch.PasswordHash, req.Password); err != nil {
		logging.Ctx(r.Context()).Info().Str("branch_id", sanitizeLogValue(branchID)).Msg("Branch login rejected")
		respondError(w, r, err)
		return
	}

	token, expires, err := h.jwtManager.GenerateToken(branch.BranchID, auth.RoleBranch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(BranchLoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expires.UTC().Format(time.RFC3339),
		Branch:    branch,
	})
}

// GetBranch handles GET /api/branches/{branchID}.
func (h *Handler) GetBranch(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.ownedBranchID(w, r)
	if !ok {
		return
	}
	branch, err := h.store.GetBranch(r.Context(), branchID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(branch)
}

// UpdateBranch handles PUT /api/branches/{branchID}.
func (h *Handler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.ownedBranchID(w, r)
	if !ok {
		return
	}
	var req UpdateBranchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	patch := req.toModel()
	if err := validYear(patch.YearEstablished); err != nil {
		respondError(w, r, err)
		return
	}

	branch, err := h.store.UpdateBranchProfile(r.Context(), branchID, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(branch)
}

// UpdateBranchLocation handles PUT /api/branches/{branchID}/location.
func (h *Handler) UpdateBranchLocation(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.ownedBranchID(w, r)
	if !ok {
		return
	}
	var req UpdateLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	branch, err := h.store.UpdateBranchLocation(r.Context(), branchID, *req.Latitude, *req.Longitude)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(branch)
}

// BranchLocations handles GET /api/branches/locations.
func (h *Handler) BranchLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.store.GetBranchLocations(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(locs, len(locs))
}

func (h *Handler) ownedBranchID(w http.ResponseWriter, r *http.Request) (string, bool) {
	branchID, err := pathParam(r, "branchID")
	if err == nil {
		err = requireBranchAccess(r, branchID)
	}
	if err != nil {
		respondError(w, r, err)
		return "", false
	}
	return branchID, true
}
