// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

// Package identity is a client for a GoTrue-compatible auth provider. It
// covers end-user signup and password login with the anon key, and the
// admin user API with the service key.
package identity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/branchpulse/internal/auth"
	"github.com/tomtom215/branchpulse/internal/config"
	"github.com/tomtom215/branchpulse/internal/logging"
	"github.com/tomtom215/branchpulse/internal/metrics"
	"github.com/tomtom215/branchpulse/internal/models"
	"github.com/tomtom215/branchpulse/internal/validation"
)

const (
	maxBodySize = 1 << 20

	// listPageSize is the per_page used when walking the admin user list.
	listPageSize = 200

	// maxListPages bounds the walk in case the provider ignores paging.
	maxListPages = 500
)

var (
	// ErrUnavailable means the provider could not be reached.
	ErrUnavailable = errors.New("auth provider unavailable")

	// ErrUserNotFound means the admin API has no user with that id.
	ErrUserNotFound = errors.New("user not found")

	// ErrAdminDisabled means no service key is configured.
	ErrAdminDisabled = errors.New("auth provider admin API is not configured")
)

// ProviderError is an unexpected non-2xx answer from the provider.
type ProviderError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider %s failed with HTTP %d: %s", e.Operation, e.StatusCode, e.Message)
}

// SignUpRequest is the data collected by the signup form.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"max=255"`
	Username string `json:"username" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=30"`
}

// SignInRequest is an email and password login.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is an issued provider session.
type Session struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// SignUpResult holds the created user and, when the provider confirms
// accounts automatically, the session.
type SignUpResult struct {
	User    *models.User `json:"user"`
	Session *Session     `json:"session"`
}

// UserUpdate is a partial admin update; nil fields are left unchanged.
type UserUpdate struct {
	Email        *string                `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string                `json:"phone,omitempty"`
	Password     *string                `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// Client talks to one provider. Safe for concurrent use.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
	now        func() time.Time
}

// NewClient builds a client from cfg.
func NewClient(cfg *config.IdentityConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		http:       &http.Client{Timeout: timeout},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SignUp registers a new end user. A rejection by the provider is reported
// as a validation error.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (_ *SignUpResult, err error) {
	defer func() { metrics.RecordIdentityCall("signup", err) }()

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	body := map[string]interface{}{
		"email":    req.Email,
		"password": req.Password,
		"data": map[string]string{
			"full_name": req.FullName,
			"username":  req.Username,
			"phone":     req.Phone,
		},
	}

	// The provider answers with a bare user when confirmation is pending and
	// with a session carrying the user when accounts are auto-confirmed.
	var raw struct {
		Session
		models.User
	}
	status, msg, err := c.do(ctx, "signup", http.MethodPost, "/signup", c.anonKey, body, &raw)
	if err != nil {
		return nil, err
	}
	if status >= 400 && status < 500 {
		return nil, validation.NewRequestValidationError("email", "provider", msg)
	}
	if status >= 300 {
		return nil, &ProviderError{Operation: "signup", StatusCode: status, Message: msg}
	}

	if raw.AccessToken != "" {
		return &SignUpResult{User: raw.Session.User, Session: &raw.Session}, nil
	}
	u := raw.User
	return &SignUpResult{User: &u}, nil
}

// SignIn exchanges an email and password for a session. Wrong credentials
// yield auth.ErrInvalidCredentials.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (_ *Session, err error) {
	defer func() { metrics.RecordIdentityCall("signin", err) }()

	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	var session Session
	status, msg, err := c.do(ctx, "signin", http.MethodPost, "/token?grant_type=password", c.anonKey,
		map[string]string{"email": req.Email, "password": req.Password}, &session)
	if err != nil {
		return nil, err
	}
	if status >= 400 && status < 500 {
		return nil, fmt.Errorf("%w: %s", auth.ErrInvalidCredentials, msg)
	}
	if status >= 300 {
		return nil, &ProviderError{Operation: "signin", StatusCode: status, Message: msg}
	}
	return &session, nil
}

// ListUsers returns every user, walking the provider's pages.
func (c *Client) ListUsers(ctx context.Context) (_ []models.User, err error) {
	defer func() { metrics.RecordIdentityCall("list_users", err) }()

	if c.serviceKey == "" {
		return nil, ErrAdminDisabled
	}

	users := []models.User{}
	for page := 1; page <= maxListPages; page++ {
		var resp struct {
			Users []models.User `json:"users"`
		}
		q := url.Values{"page": {strconv.Itoa(page)}, "per_page": {strconv.Itoa(listPageSize)}}
		status, msg, err := c.do(ctx, "list_users", http.MethodGet, "/admin/users?"+q.Encode(), c.serviceKey, nil, &resp)
		if err != nil {
			return nil, err
		}
		if status >= 300 {
			return nil, &ProviderError{Operation: "list_users", StatusCode: status, Message: msg}
		}
		users = append(users, resp.Users...)
		if len(resp.Users) < listPageSize {
			return users, nil
		}
	}
	logging.Ctx(ctx).Warn().Int("pages", maxListPages).Msg("Stopped walking auth provider user list")
	return users, nil
}

// GetUser loads one user by id.
func (c *Client) GetUser(ctx context.Context, id string) (_ *models.User, err error) {
	defer func() { metrics.RecordIdentityCall("get_user", err) }()
	return c.adminUser(ctx, "get_user", http.MethodGet, id, nil)
}

// UpdateUser applies u to the user and returns the result.
func (c *Client) UpdateUser(ctx context.Context, id string, u UserUpdate) (_ *models.User, err error) {
	defer func() { metrics.RecordIdentityCall("update_user", err) }()

	if verr := validation.ValidateStruct(u); verr != nil {
		return nil, verr
	}
	return c.adminUser(ctx, "update_user", http.MethodPut, id, u)
}

// DeleteUser removes the user.
func (c *Client) DeleteUser(ctx context.Context, id string) (err error) {
	defer func() { metrics.RecordIdentityCall("delete_user", err) }()
	_, err = c.adminUser(ctx, "delete_user", http.MethodDelete, id, nil)
	return err
}

// Stats summarizes the whole user base.
func (c *Client) Stats(ctx context.Context) (models.UserStats, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return models.UserStats{}, err
	}
	return models.ComputeUserStats(users, c.now()), nil
}

func (c *Client) adminUser(ctx context.Context, op, method, id string, body interface{}) (*models.User, error) {
	if c.serviceKey == "" {
		return nil, ErrAdminDisabled
	}
	if strings.TrimSpace(id) == "" {
		return nil, validation.NewRequestValidationError("id", "required", "id is required")
	}

	var u models.User
	var out interface{} = &u
	if method == http.MethodDelete {
		out = nil
	}
	status, msg, err := c.do(ctx, op, method, "/admin/users/"+url.PathEscape(id), c.serviceKey, body, out)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", op, id, ErrUserNotFound)
	case status >= 400 && status < 500:
		return nil, validation.NewRequestValidationError("user", "provider", msg)
	case status >= 300:
		return nil, &ProviderError{Operation: op, StatusCode: status, Message: msg}
	}
	if out == nil {
		return nil, nil
	}
	return &u, nil
}

// do sends one request. On 2xx the body is decoded into out (when non-nil);
// on other statuses it returns the provider's message instead. err is only
// set for transport and decoding failures.
func (c *Client) do(ctx context.Context, op, method, path, key string, in, out interface{}) (status int, msg string, err error) {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, "", fmt.Errorf("encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, "", fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("operation", op).Msg("Auth provider unreachable")
		return 0, "", fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, "", fmt.Errorf("read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, providerMessage(data, resp.StatusCode), nil
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return 0, "", fmt.Errorf("decode %s response: %w", op, err)
		}
	}
	return resp.StatusCode, "", nil
}

// providerMessage picks the human readable error out of the provider's
// body, which varies between msg, message, error_description and error.
func providerMessage(body []byte, status int) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
			if s != "" {
				return s
			}
		}
	}
	return http.StatusText(status)
}
