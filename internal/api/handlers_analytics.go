// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/streamvault/streamvault/internal/models"
	"github.com/streamvault/streamvault/internal/store"
)

// GetAnalytics returns the analytics snapshot for a media asset. The
// Metadata.Cached flag tells the caller whether the snapshot came from the
// cache or was recomputed from the view log.
// GET /api/v1/media/{id}/analytics
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "id")

	if _, err := h.store.GetMedia(mediaID); err != nil {
		if errors.Is(err, store.ErrMediaNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Media asset not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to load media asset", err)
		return
	}

	snapshot, cached, err := h.analytics.Snapshot(r.Context(), mediaID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to compute analytics", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     snapshot,
		Metadata: models.Metadata{Timestamp: time.Now(), Cached: cached},
	})
}
