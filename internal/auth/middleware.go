// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/branchpulse/internal/logging"
)

// Auth modes.
const (
	AuthModeNone = "none"
	AuthModeJWT  = "jwt"
)

var (
	// ErrMissingToken means a protected route was called without a bearer token.
	ErrMissingToken = errors.New("authentication required")

	// ErrInvalidToken means the bearer token failed validation.
	ErrInvalidToken = errors.New("invalid or expired token")
)

type contextKey string

// ClaimsContextKey carries *Claims on authenticated requests.
const ClaimsContextKey contextKey = "claims"

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware enforces bearer token authentication.
type Middleware struct {
	jwtManager *JWTManager
	authMode   string
	onError    ErrorWriter
}

// NewMiddleware creates the middleware. jwtManager may be nil in "none" mode.
func NewMiddleware(jwtManager *JWTManager, authMode string, onError ErrorWriter) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	return &Middleware{jwtManager: jwtManager, authMode: authMode, onError: onError}
}

// Enabled reports whether requests are checked at all.
func (m *Middleware) Enabled() bool {
	return m.authMode == AuthModeJWT && m.jwtManager != nil
}

// Authenticate rejects requests without a valid bearer token. In "none" mode
// it passes every request through unchanged.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			m.onError(w, r, ErrMissingToken)
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected bearer token")
			m.onError(w, r, ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// ContextWithClaims stores claims in ctx.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFromContext returns the caller's claims, or nil on unauthenticated
// requests.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

// CanAccessBranch reports whether the caller may touch branchID. Requests
// without claims are allowed, since they only reach a handler when
// authentication is disabled.
func CanAccessBranch(ctx context.Context, branchID string) bool {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return true
	}
	return claims.BranchID() == branchID
}
