// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/branchpulse/internal/auth"
	"github.com/tomtom215/branchpulse/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// sanitizeLogValue removes control characters from strings to prevent log injection.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decodeJSON reads the body into dst and validates it. Malformed and
// oversized bodies are reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return validation.NewRequestValidationError("body", "required", "request body is required")
		case errors.As(err, &maxErr):
			return validation.NewRequestValidationError("body", "max", "request body is too large")
		default:
			return validation.NewRequestValidationError("body", "json", "request body is not valid JSON: "+err.Error())
		}
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// pathParam returns a trimmed, non-empty chi URL parameter.
func pathParam(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		return "", validation.NewRequestValidationError(name, "required", name+" is required")
	}
	return v, nil
}

// requiredQuery returns a trimmed, non-empty query parameter.
func requiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", validation.NewRequestValidationError(name, "required", name+" query parameter is required")
	}
	return v, nil
}

// getIntParam parses an integer query parameter. Absent means def;
// anything that is not a non-negative integer is a validation error.
func getIntParam(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, validation.NewRequestValidationError(name, "number", name+" must be a non-negative integer")
	}
	return n, nil
}

// requireBranchAccess rejects tokens issued to another branch.
func requireBranchAccess(r *http.Request, branchID string) error {
	if !auth.CanAccessBranch(r.Context(), branchID) {
		return ErrForbidden
	}
	return nil
}
