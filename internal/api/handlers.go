// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"context"
	"time"

	"github.com/tomtom215/branchpulse/internal/auth"
	"github.com/tomtom215/branchpulse/internal/config"
	"github.com/tomtom215/branchpulse/internal/identity"
	"github.com/tomtom215/branchpulse/internal/models"
	"github.com/tomtom215/branchpulse/internal/reviews"
	"github.com/tomtom215/branchpulse/internal/sentiment"
)

// Store is the persistence used by the handlers. *database.DB satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	GetTodosByBranch(ctx context.Context, branchID string) ([]models.Todo, error)
	AddTodo(ctx context.Context, in models.NewTodo) (*models.Todo, error)
	ToggleTodoStatus(ctx context.Context, id string, completed bool) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id string) (bool, error)

	GetConcernsByBranch(ctx context.Context, branchID, status string) ([]models.Concern, error)
	GetConcern(ctx context.Context, id string) (*models.Concern, error)
	AddConcern(ctx context.Context, in models.NewConcern) (*models.Concern, error)
	UpdateConcern(ctx context.Context, id string, u models.ConcernUpdate) (*models.Concern, error)
	DeleteConcern(ctx context.Context, id string) error

	CreateBranch(ctx context.Context, b *models.Branch) error
	GetBranch(ctx context.Context, branchID string) (*models.Branch, error)
	GetBranchLocations(ctx context.Context) ([]models.BranchLocation, error)
	UpdateBranchProfile(ctx context.Context, branchID string, u models.BranchProfileUpdate) (*models.Branch, error)
	UpdateBranchLocation(ctx context.Context, branchID string, lat, lng float64) (*models.Branch, error)
}

// ReviewService is the review/sentiment gateway. *reviews.Service satisfies it.
type ReviewService interface {
	AnalyzeReview(ctx context.Context, sub reviews.Submission) (*reviews.AnalyzeResult, error)
	BatchAnalyze(ctx context.Context) (*reviews.BatchResult, error)
	Stats(ctx context.Context, businessName string) (models.ReviewStats, error)
	List(ctx context.Context, f models.ReviewFilter) ([]models.Review, error)
	PredictorHealth(ctx context.Context) (*sentiment.Health, error)
}

// IdentityService is the external auth provider. *identity.Client satisfies it.
type IdentityService interface {
	SignUp(ctx context.Context, req identity.SignUpRequest) (*identity.SignUpResult, error)
	SignIn(ctx context.Context, req identity.SignInRequest) (*identity.Session, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, u identity.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
	Stats(ctx context.Context) (models.UserStats, error)
}

// Handler holds the dependencies of the HTTP handlers.
//
// Handler methods are split across files by resource:
//   - handlers_health.go: liveness and readiness
//   - handlers_todos.go, handlers_concerns.go: per-branch task tracking
//   - handlers_branches.go: registration, login, profile, map
//   - handlers_reviews.go: sentiment gateway
//   - handlers_users.go: auth provider signup, login and admin
type Handler struct {
	store      Store
	reviews    ReviewService
	identity   IdentityService
	jwtManager *auth.JWTManager
	config     *config.Config
	startTime  time.Time
}

// NewHandler creates a handler. identity and jwtManager may be nil; the
// endpoints that need them then answer 503.
func NewHandler(cfg *config.Config, store Store, reviewSvc ReviewService, identitySvc IdentityService, jwtManager *auth.JWTManager) *Handler {
	return &Handler{
		store:      store,
		reviews:    reviewSvc,
		identity:   identitySvc,
		jwtManager: jwtManager,
		config:     cfg,
		startTime:  time.Now(),
	}
}
