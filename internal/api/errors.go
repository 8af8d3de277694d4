// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/branchpulse/internal/auth"
	"github.com/tomtom215/branchpulse/internal/database"
	"github.com/tomtom215/branchpulse/internal/identity"
	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/reviews"
	"github.com/tomtom215/branchpulse/internal/sentiment"
	"github.com/tomtom215/branchpulse/internal/validation"
)

var (
	// ErrForbidden means the caller is authenticated for another branch.
	ErrForbidden = errors.New("not allowed to access this branch")

	// ErrIdentityDisabled means no auth provider is configured.
	ErrIdentityDisabled = errors.New("auth provider integration is disabled")

	// ErrTokensDisabled means no JWT secret is configured, so branch login
	// cannot issue tokens.
	ErrTokensDisabled = errors.New("branch login is not configured")
)

// errorResponse is the classified form of an error.
type errorResponse struct {
	status  int
	code    string
	message string
	details interface{}
}

// classifyError is the single mapping from domain errors to HTTP responses.
func classifyError(err error) errorResponse {
	var (
		verr     *validation.RequestValidationError
		upstream *sentiment.UpstreamError
		provider *identity.ProviderError
	)

	switch {
	case errors.As(err, &verr):
		return errorResponse{http.StatusBadRequest, ErrCodeValidation, verr.Error(), verr.Details()}
	case errors.Is(err, database.ErrConstraint):
		return errorResponse{http.StatusBadRequest, ErrCodeValidation, "Request violates a data constraint", nil}

	case errors.Is(err, auth.ErrInvalidCredentials):
		return errorResponse{http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid credentials", nil}
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return errorResponse{http.StatusUnauthorized, ErrCodeUnauthorized, err.Error(), nil}

	case errors.Is(err, ErrForbidden):
		return errorResponse{http.StatusForbidden, ErrCodeForbidden, err.Error(), nil}

	case errors.Is(err, database.ErrNotFound):
		return errorResponse{http.StatusNotFound, ErrCodeNotFound, "Resource not found", nil}
	case errors.Is(err, identity.ErrUserNotFound):
		return errorResponse{http.StatusNotFound, ErrCodeNotFound, "User not found", nil}

	case errors.Is(err, database.ErrConflict):
		return errorResponse{http.StatusConflict, ErrCodeConflict, "Resource already exists", nil}
	case errors.Is(err, reviews.ErrBatchInProgress):
		return errorResponse{http.StatusConflict, ErrCodeConflict, err.Error(), nil}

	case errors.As(err, &upstream):
		return errorResponse{http.StatusBadGateway, ErrCodeUpstreamError, upstream.Message(), upstream.Payload}
	case errors.Is(err, reviews.ErrInvalidPrediction):
		return errorResponse{http.StatusBadGateway, ErrCodeUpstreamError, err.Error(), nil}
	case errors.As(err, &provider):
		return errorResponse{http.StatusBadGateway, ErrCodeUpstreamError, provider.Message, nil}

	case errors.Is(err, sentiment.ErrUnavailable):
		return errorResponse{http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable, "Sentiment service is unavailable", nil}
	case errors.Is(err, identity.ErrUnavailable),
		errors.Is(err, identity.ErrAdminDisabled),
		errors.Is(err, ErrIdentityDisabled):
		return errorResponse{http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable, "Auth provider is unavailable", nil}
	case errors.Is(err, ErrTokensDisabled):
		return errorResponse{http.StatusServiceUnavailable, ErrCodeServiceUnavailable, err.Error(), nil}
	}

	return errorResponse{http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred", nil}
}

// respondError classifies err, logs it, and writes the error envelope.
// Internal error text never reaches the client for 5xx responses.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	res := classifyError(err)

	ev := logging.Ctx(r.Context()).Warn()
	switch {
	case res.status >= http.StatusInternalServerError:
		ev = logging.Ctx(r.Context()).Error()
	case errors.Is(err, context.Canceled):
		ev = logging.Ctx(r.Context()).Debug()
	}
	ev.Err(err).Int("status", res.status).Str("code", res.code).Str("path", r.URL.Path).Msg("Request failed")

	NewResponseWriter(w, r).Error(res.status, res.code, res.message, res.details)
}

// WriteAuthError renders authentication middleware failures in the
// standard envelope. It satisfies auth.ErrorWriter.
func WriteAuthError(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err)
}
