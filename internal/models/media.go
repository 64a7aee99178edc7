// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

// Package models defines the domain types shared across StreamVault.
package models

import "time"

// MediaType classifies a media asset.
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// Valid reports whether the media type is one of the known values.
func (t MediaType) Valid() bool {
	return t == MediaTypeVideo || t == MediaTypeAudio
}

// MediaAsset is an uploaded media file tracked by the catalog.
type MediaAsset struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      MediaType `json:"type"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewEvent is one entry in the append-only view log. The log is the source
// of truth for analytics; aggregates are always recomputable from it.
type ViewEvent struct {
	MediaID  string    `json:"media_id"`
	ViewerIP string    `json:"viewer_ip"`
	ViewedAt time.Time `json:"viewed_at"`
}

// AnalyticsSnapshot is the derived per-asset aggregate. It is never the
// source of truth: it is recomputed from the view log on demand and cached
// with a TTL.
type AnalyticsSnapshot struct {
	MediaID       string    `json:"media_id"`
	TotalViews    int64     `json:"total_views"`
	UniqueViewers int64     `json:"unique_viewers"`
	RecentViews   int64     `json:"recent_views_7d"`
	ComputedAt    time.Time `json:"computed_at"`
}

// AdminUser is an operator account allowed to manage media and read
// analytics.
type AdminUser struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}
