// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/streamvault/streamvault/internal/logging"
	"github.com/streamvault/streamvault/internal/metrics"
	"github.com/streamvault/streamvault/internal/models"
	"github.com/streamvault/streamvault/internal/ratelimit"
	"github.com/streamvault/streamvault/internal/store"
)

// maxUploadBytes caps multipart uploads at 512 MiB.
const maxUploadBytes = 512 << 20

// StreamURLResponse is the payload returned when minting a signed link.
type StreamURLResponse struct {
	MediaID   string `json:"media_id"`
	StreamURL string `json:"stream_url"`
	ExpiresAt int64  `json:"expires_at"`
}

// CreateMedia registers a media asset and stores its uploaded file.
// POST /api/v1/media (multipart: title, type, file)
func (h *Handler) CreateMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Expected multipart form with title, type, and file", err)
		return
	}

	title := r.FormValue("title")
	mediaType := models.MediaType(r.FormValue("type"))
	if title == "" || !mediaType.Valid() {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Title and a valid type (video or audio) are required", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "A media file is required", err)
		return
	}
	defer file.Close()

	// Filenames come from the client. The stored name is a fresh UUID with
	// only the original extension carried over.
	ext := filepath.Ext(header.Filename)
	storedName := uuid.NewString() + ext
	storedPath := filepath.Join(h.config.Storage.Dir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store media file", err)
		return
	}
	written, err := io.Copy(dst, file)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(storedPath)
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store media file", err)
		return
	}

	asset, err := h.store.CreateMedia(title, mediaType, storedPath)
	if err != nil {
		os.Remove(storedPath)
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to register media asset", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("media", asset.ID).
		Str("type", string(mediaType)).
		Int64("bytes", written).
		Str("user", UserIDFromContext(r.Context())).
		Msg("Media asset created")

	respondSuccess(w, http.StatusCreated, asset)
}

// ListMedia returns all registered media assets.
// GET /api/v1/media
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	assets, err := h.store.ListMedia()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to list media assets", err)
		return
	}
	respondSuccess(w, http.StatusOK, assets)
}

// StreamURL mints a time-limited signed streaming link for a media asset.
// GET /api/v1/media/{id}/stream-url
func (h *Handler) StreamURL(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "id")

	asset, err := h.store.GetMedia(mediaID)
	if errors.Is(err, store.ErrMediaNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Media asset not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to load media asset", err)
		return
	}

	link := h.signer.Mint(fmt.Sprintf("/media/stream/%s", asset.ID), h.config.Signing.LinkTTL, h.now())
	metrics.LinkMinted.Inc()

	respondSuccess(w, http.StatusOK, StreamURLResponse{
		MediaID:   asset.ID,
		StreamURL: link.URL(h.config.Server.BaseURL),
		ExpiresAt: link.ExpiresAt,
	})
}

// Stream verifies a signed link and serves the media file. The rejection
// response never distinguishes a bad signature from an expired link.
// GET /media/stream/{id}?exp=...&sig=...
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "id")

	exp, err := strconv.ParseInt(r.URL.Query().Get("exp"), 10, 64)
	sig := r.URL.Query().Get("sig")
	if err != nil || sig == "" {
		metrics.LinkVerifications.WithLabelValues("rejected").Inc()
		respondError(w, http.StatusForbidden, "FORBIDDEN_LINK", "Invalid or expired link", nil)
		return
	}

	if !h.signer.Verify(fmt.Sprintf("/media/stream/%s", mediaID), exp, sig, h.now()) {
		metrics.LinkVerifications.WithLabelValues("rejected").Inc()
		logging.Ctx(r.Context()).Warn().
			Str("media", sanitizeLogValue(mediaID)).
			Msg("Rejected stream link")
		respondError(w, http.StatusForbidden, "FORBIDDEN_LINK", "Invalid or expired link", nil)
		return
	}
	metrics.LinkVerifications.WithLabelValues("ok").Inc()

	asset, err := h.store.GetMedia(mediaID)
	if errors.Is(err, store.ErrMediaNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Media asset not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to load media asset", err)
		return
	}

	event := models.ViewEvent{
		MediaID:  asset.ID,
		ViewerIP: ratelimit.ClientIdentity(r),
		ViewedAt: h.now(),
	}
	if err := h.analytics.LogView(r.Context(), event); err != nil {
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to record view", err)
		return
	}

	info, err := os.Stat(asset.FilePath)
	if err != nil || info.IsDir() {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Media file is missing", err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filepath.Base(asset.FilePath)))
	http.ServeFile(w, r, asset.FilePath)
}
