// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/branchpulse/internal/auth"
	"github.com/tomtom215/branchpulse/internal/config"
	"github.com/tomtom215/branchpulse/internal/database"
	"github.com/tomtom215/branchpulse/internal/identity"
	"github.com/tomtom215/branchpulse/internal/models"
	"github.com/tomtom215/branchpulse/internal/reviews"
	"github.com/tomtom215/branchpulse/internal/sentiment"
)

// memStore is an in-memory Store.
type memStore struct {
	mu       sync.Mutex
	seq      int
	todos    map[string]models.Todo
	concerns map[string]models.Concern
	branches map[string]models.Branch
	pingErr  error
}

func newMemStore() *memStore {
	return &memStore{
		todos:    map[string]models.Todo{},
		concerns: map[string]models.Concern{},
		branches: map[string]models.Branch{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) Ping(context.Context) error { return s.pingErr }

func (s *memStore) GetTodosByBranch(_ context.Context, branchID string) ([]models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Todo{}
	for _, t := range s.todos {
		if t.BranchID == branchID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) AddTodo(_ context.Context, in models.NewTodo) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := models.Todo{
		ID: s.nextID("todo"), BranchID: in.BranchID, Title: in.Title,
		Category: in.Category, Priority: in.Priority, DueDate: in.DueDate, Notes: in.Notes,
		CreatedAt: time.Now().UTC(),
	}
	s.todos[t.ID] = t
	return &t, nil
}

func (s *memStore) ToggleTodoStatus(_ context.Context, id string, completed bool) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[id]
	if !ok {
		return nil, fmt.Errorf("toggle todo: %w", database.ErrNotFound)
	}
	t.Completed = completed
	t.CompletedAt = nil
	if completed {
		now := time.Now().UTC()
		t.CompletedAt = &now
	}
	s.todos[id] = t
	return &t, nil
}

func (s *memStore) DeleteTodo(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.todos, id)
	return true, nil
}

func (s *memStore) GetConcernsByBranch(_ context.Context, branchID, status string) ([]models.Concern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Concern{}
	for _, c := range s.concerns {
		if c.BranchID == branchID && (status == "" || c.Status == status) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) GetConcern(_ context.Context, id string) (*models.Concern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.concerns[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &c, nil
}

func (s *memStore) AddConcern(_ context.Context, in models.NewConcern) (*models.Concern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := in.Status
	if status == "" {
		status = models.ConcernOpen
	}
	c := models.Concern{
		ID: s.nextID("concern"), BranchID: in.BranchID, Title: in.Title,
		Description: in.Description, Priority: in.Priority, Category: in.Category, Status: status,
	}
	s.concerns[c.ID] = c
	return &c, nil
}

func (s *memStore) UpdateConcern(_ context.Context, id string, u models.ConcernUpdate) (*models.Concern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.concerns[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Title != nil {
		c.Title = *u.Title
	}
	s.concerns[id] = c
	return &c, nil
}

func (s *memStore) DeleteConcern(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.concerns[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.concerns, id)
	return nil
}

func (s *memStore) CreateBranch(_ context.Context, b *models.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.branches[b.BranchID]; ok {
		return fmt.Errorf("create branch: %w", database.ErrConflict)
	}
	s.branches[b.BranchID] = *b
	return nil
}

func (s *memStore) GetBranch(_ context.Context, branchID string) (*models.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.branches[branchID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &b, nil
}

func (s *memStore) GetBranchLocations(context.Context) ([]models.BranchLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.BranchLocation{}
	for _, b := range s.branches {
		out = append(out, models.BranchLocation{
			BranchID: b.BranchID, BranchName: b.BranchName, Address: b.Address,
			City: b.City, Latitude: b.Latitude, Longitude: b.Longitude,
		})
	}
	return out, nil
}

func (s *memStore) UpdateBranchProfile(_ context.Context, branchID string, u models.BranchProfileUpdate) (*models.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.branches[branchID]
	if !ok {
		return nil, database.ErrNotFound
	}
	if u.BranchName != nil {
		b.BranchName = *u.BranchName
	}
	if u.YearEstablished != nil {
		b.YearEstablished = u.YearEstablished
	}
	s.branches[branchID] = b
	return &b, nil
}

func (s *memStore) UpdateBranchLocation(_ context.Context, branchID string, lat, lng float64) (*models.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.branches[branchID]
	if !ok {
		return nil, database.ErrNotFound
	}
	b.Latitude, b.Longitude = &lat, &lng
	s.branches[branchID] = b
	return &b, nil
}

// fakeReviews is a scripted ReviewService.
type fakeReviews struct {
	analyzeErr error
	batchErr   error
	healthErr  error
	health     sentiment.Health
	filter     models.ReviewFilter
	statsName  string
}

func (f *fakeReviews) AnalyzeReview(_ context.Context, sub reviews.Submission) (*reviews.AnalyzeResult, error) {
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	pos := models.SentimentPositive
	return &reviews.AnalyzeResult{
		Message:    "Review analyzed and saved",
		Sentiment:  pos,
		Confidence: 0.9,
		Data:       &models.Review{ID: "r-1", BusinessName: sub.BusinessName, SentimentScore: &pos},
	}, nil
}

func (f *fakeReviews) BatchAnalyze(context.Context) (*reviews.BatchResult, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	return &reviews.BatchResult{Message: "Analyzed 2 reviews successfully", Total: 3, Updated: 2}, nil
}

func (f *fakeReviews) Stats(_ context.Context, name string) (models.ReviewStats, error) {
	f.statsName = name
	return models.ReviewStats{Total: 2, Positive: 1, Negative: 1, AvgRating: 3.5}, nil
}

func (f *fakeReviews) List(_ context.Context, filter models.ReviewFilter) ([]models.Review, error) {
	f.filter = filter
	return []models.Review{}, nil
}

func (f *fakeReviews) PredictorHealth(context.Context) (*sentiment.Health, error) {
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	h := f.health
	return &h, nil
}

// fakeIdentity is a scripted IdentityService.
type fakeIdentity struct {
	err error
}

func (f *fakeIdentity) SignUp(_ context.Context, req identity.SignUpRequest) (*identity.SignUpResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &identity.SignUpResult{User: &models.User{ID: "u-1", Email: req.Email}}, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, req identity.SignInRequest) (*identity.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &identity.Session{AccessToken: "tok", TokenType: "bearer", User: &models.User{Email: req.Email}}, nil
}

func (f *fakeIdentity) ListUsers(context.Context) ([]models.User, error) {
	return []models.User{{ID: "u-1"}, {ID: "u-2"}}, f.err
}

func (f *fakeIdentity) GetUser(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: id}, nil
}

func (f *fakeIdentity) UpdateUser(_ context.Context, id string, u identity.UserUpdate) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &models.User{ID: id}
	if u.Email != nil {
		out.Email = *u.Email
	}
	return out, nil
}

func (f *fakeIdentity) DeleteUser(context.Context, string) error { return f.err }

func (f *fakeIdentity) Stats(context.Context) (models.UserStats, error) {
	return models.UserStats{Total: 2, Active: 1}, f.err
}

const testJWTSecret = "test-secret-that-is-long-enough-for-hs256"

type testEnv struct {
	store    *memStore
	reviews  *fakeReviews
	identity *fakeIdentity
	jwt      *auth.JWTManager
	server   http.Handler
}

type envOption func(*testEnv, *config.Config)

func withJWTAuth() envOption {
	return func(_ *testEnv, cfg *config.Config) { cfg.Security.AuthMode = auth.AuthModeJWT }
}

func withoutIdentity() envOption {
	return func(e *testEnv, _ *config.Config) { e.identity = nil }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := &config.Config{Security: config.SecurityConfig{
		AuthMode:          auth.AuthModeNone,
		JWTSecret:         testJWTSecret,
		BcryptCost:        4,
		RateLimitDisabled: true,
	}}
	env := &testEnv{
		store:    newMemStore(),
		reviews:  &fakeReviews{health: sentiment.Health{Status: "ok", ModelLoaded: true}},
		identity: &fakeIdentity{},
	}
	for _, opt := range opts {
		opt(env, cfg)
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	env.jwt = jwtManager

	var idSvc IdentityService
	if env.identity != nil {
		idSvc = env.identity
	}
	handler := NewHandler(cfg, env.store, env.reviews, idSvc, jwtManager)
	mw := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, WriteAuthError)
	env.server = NewRouter(handler, mw, ChiMiddlewareConfigFromSecurity(&cfg.Security)).SetupChi()
	return env
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v (body %q)", method, path, err, rec.Body.String())
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

func (e *testEnv) token(t *testing.T, branchID string) string {
	t.Helper()
	tok, _, err := e.jwt.GenerateToken(branchID, auth.RoleBranch)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

var errBoom = errors.New("boom")
