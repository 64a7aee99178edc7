// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package api

import (
	"net/http"

	"github.com/streamvault/streamvault/internal/analytics"
)

// HealthResponse reports service liveness and the state of the analytics
// cache. The service is "ok" even when the cache is disabled or degraded.
type HealthResponse struct {
	Status string           `json:"status"`
	Cache  analytics.Health `json:"cache"`
}

// Health reports liveness.
// GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Cache:  h.analytics.Health(r.Context()),
	})
}
