// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the full route tree.
//
// Public surface:
//
//	GET  /media/stream/{id}   signed-link streaming (custom sliding window)
//	GET  /api/v1/health       liveness plus cache health
//	GET  /metrics             Prometheus exposition
//
// Admin surface (Bearer token required except auth):
//
//	POST /api/v1/auth/signup
//	POST /api/v1/auth/login
//	POST /api/v1/media
//	GET  /api/v1/media
//	GET  /api/v1/media/{id}/stream-url
//	GET  /api/v1/media/{id}/analytics
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(PrometheusMetrics)

		r.Get("/health", h.Health)

		// Credential endpoints get a strict IP limiter to slow brute
		// forcing. This is separate from the view-path limiter.
		r.Route("/auth", func(r chi.Router) {
			r.Use(httprate.LimitByIP(20, time.Minute))
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Post("/media", h.CreateMedia)
			r.Get("/media", h.ListMedia)
			r.Get("/media/{id}/stream-url", h.StreamURL)
			r.Get("/media/{id}/analytics", h.GetAnalytics)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(PrometheusMetrics)
		r.Use(h.RateLimitViews)
		r.Get("/media/stream/{id}", h.Stream)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
