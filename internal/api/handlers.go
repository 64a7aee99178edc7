// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

// Package api provides the HTTP surface: routing (chi), handlers, and the
// middleware stack.
package api

import (
	"time"

	"github.com/streamvault/streamvault/internal/analytics"
	"github.com/streamvault/streamvault/internal/auth"
	"github.com/streamvault/streamvault/internal/config"
	"github.com/streamvault/streamvault/internal/ratelimit"
	"github.com/streamvault/streamvault/internal/signing"
	"github.com/streamvault/streamvault/internal/store"
)

// Handler holds the wired components behind the HTTP endpoints. All
// dependencies are injected so tests can construct isolated instances.
type Handler struct {
	config    *config.Config
	store     *store.Store
	signer    *signing.Signer
	limiter   *ratelimit.Limiter
	analytics *analytics.Service
	auth      *auth.Service

	// now is the clock used for link expiry and rate limiting. Tests
	// substitute a fixed clock.
	now func() time.Time
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(
	cfg *config.Config,
	st *store.Store,
	signer *signing.Signer,
	limiter *ratelimit.Limiter,
	analyticsService *analytics.Service,
	authService *auth.Service,
) *Handler {
	return &Handler{
		config:    cfg,
		store:     st,
		signer:    signer,
		limiter:   limiter,
		analytics: analyticsService,
		auth:      authService,
		now:       time.Now,
	}
}
