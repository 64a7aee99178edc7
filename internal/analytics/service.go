// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/streamvault/streamvault/internal/logging"
	"github.com/streamvault/streamvault/internal/metrics"
	"github.com/streamvault/streamvault/internal/models"
)

// recentWindow is the trailing interval covered by the snapshot's
// recent-view count.
const recentWindow = 7 * 24 * time.Hour

// ViewLog is the persisted event log the snapshots derive from. The Badger
// store implements it.
type ViewLog interface {
	AppendView(event models.ViewEvent) error
	ViewsForMedia(mediaID string) ([]models.ViewEvent, error)
}

// Service ties the cache-aside reads and the write-path invalidation
// together over the view log.
type Service struct {
	cache *Cache
	views ViewLog
	now   func() time.Time
}

// NewService creates the analytics service.
func NewService(cache *Cache, views ViewLog) *Service {
	return &Service{cache: cache, views: views, now: time.Now}
}

// Snapshot returns the analytics aggregate for the asset. On a cache hit the
// cached value is returned as-is; on a miss the aggregate is recomputed from
// the view log and written through. The second return reports whether the
// value came from the cache.
func (s *Service) Snapshot(ctx context.Context, mediaID string) (*models.AnalyticsSnapshot, bool, error) {
	if cached, ok := s.cache.Get(ctx, mediaID); ok {
		return cached, true, nil
	}

	events, err := s.views.ViewsForMedia(mediaID)
	if err != nil {
		return nil, false, fmt.Errorf("recompute analytics for %s: %w", mediaID, err)
	}

	snapshot := computeSnapshot(mediaID, events, s.now())

	// Write-through failure is non-fatal: the snapshot is returned from the
	// just-computed value either way.
	s.cache.Put(ctx, mediaID, snapshot)

	return snapshot, false, nil
}

// LogView appends the event to the view log and synchronously invalidates
// the asset's cached snapshot, bounding staleness to "at most TTL, or until
// the next write".
func (s *Service) LogView(ctx context.Context, event models.ViewEvent) error {
	if err := s.views.AppendView(event); err != nil {
		return fmt.Errorf("append view event: %w", err)
	}
	metrics.ViewsLogged.Inc()

	if !s.cache.Invalidate(ctx, event.MediaID) {
		logging.Debug().Str("media_id", event.MediaID).Msg("No cached snapshot to invalidate")
	}
	return nil
}

// Health exposes the cache backend's liveness for the health endpoint.
func (s *Service) Health(ctx context.Context) Health {
	return s.cache.HealthCheck(ctx)
}

// computeSnapshot aggregates the view log into a snapshot: total views,
// distinct viewer IPs, and views within the trailing recent window.
func computeSnapshot(mediaID string, events []models.ViewEvent, now time.Time) *models.AnalyticsSnapshot {
	viewers := make(map[string]struct{}, len(events))
	recentCutoff := now.Add(-recentWindow)

	var recent int64
	for _, event := range events {
		viewers[event.ViewerIP] = struct{}{}
		if event.ViewedAt.After(recentCutoff) {
			recent++
		}
	}

	return &models.AnalyticsSnapshot{
		MediaID:       mediaID,
		TotalViews:    int64(len(events)),
		UniqueViewers: int64(len(viewers)),
		RecentViews:   recent,
		ComputedAt:    now.UTC(),
	}
}
