// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

/*
Package auth handles branch credentials and API authentication.

Branch passwords are stored as bcrypt hashes. A successful branch login
yields an HS256 JWT whose subject is the branch_id. The Middleware checks
that token on protected routes when AUTH_MODE is "jwt" and lets every
request through when it is "none".

Usage:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, writeAuthError)
	r.With(mw.Authenticate).Get("/api/todos", h.GetTodos)

Handlers read the caller with ClaimsFromContext and restrict branch-scoped
data with CanAccessBranch.
*/
package auth
