// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/branchpulse/internal/auth"
	"github.com/tomtom215/branchpulse/internal/middleware"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. mw authenticates the protected routes.
func NewRouter(handler *Handler, mw *auth.Middleware, chiCfg *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		auth:          mw,
		chiMiddleware: NewChiMiddleware(chiCfg),
	}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	// Global middleware, outermost first.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Get("/health", h.Health)
		r.Get("/health/ready", h.Ready)

		// Public endpoints.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Post("/signup", h.SignUp)
			r.Post("/register-branch", h.RegisterBranch)
			r.Get("/branches/locations", h.BranchLocations)
			r.Post("/analyze-review", h.AnalyzeReview)

			r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
			r.With(router.chiMiddleware.RateLimitLogin()).Post("/branch-login", h.BranchLogin)
		})

		// Authenticated endpoints. A no-op when AUTH_MODE is none.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.auth.Authenticate)

			r.Route("/branches/{branchID}", func(r chi.Router) {
				r.Get("/", h.GetBranch)
				r.Put("/", h.UpdateBranch)
				r.Put("/location", h.UpdateBranchLocation)
			})

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", h.ListTodos)
				r.Post("/", h.CreateTodo)
				r.Patch("/{id}", h.ToggleTodo)
				r.Delete("/{id}", h.DeleteTodo)
			})

			r.Route("/concerns", func(r chi.Router) {
				r.Get("/", h.ListConcerns)
				r.Post("/", h.CreateConcern)
				r.Put("/{id}", h.UpdateConcern)
				r.Delete("/{id}", h.DeleteConcern)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", h.ListReviews)
				r.Get("/stats", h.ReviewStats)
				r.Post("/analyze-all", h.AnalyzeAllReviews)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Get("/stats", h.UserStats)
				r.Get("/{id}", h.GetUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
			})
		})
	})

	return r
}
