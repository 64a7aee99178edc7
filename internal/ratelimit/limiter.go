// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

// Package ratelimit implements a process-local sliding-window rate limiter.
//
// Unlike a fixed-bucket counter, the limiter tracks the exact timestamps of
// recent requests per client and counts those within the trailing window, so
// there is no burst artifact at window boundaries. State is process-local:
// multiple backend instances each enforce their own quota (distributed
// coordination is out of scope).
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/streamvault/streamvault/internal/logging"
)

// Info reports quota metadata for a single admission decision.
type Info struct {
	Limit        int   `json:"limit"`
	Remaining    int   `json:"remaining"`
	ResetAt      int64 `json:"reset_at"`
	CurrentCount int   `json:"current_count"`
}

// Limiter admits at most Limit requests per client within the trailing
// Window. Safe for concurrent use; the purge-count-decide-append sequence
// runs as a single critical section so two near-simultaneous requests cannot
// both claim the last remaining slot.
type Limiter struct {
	mu      sync.Mutex
	clients map[string][]int64 // unix-second timestamps, oldest first
	limit   int
	window  int64 // seconds
}

// New creates a Limiter allowing limit requests per window per client.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		clients: make(map[string][]int64),
		limit:   limit,
		window:  int64(window.Seconds()),
	}
}

// CheckAndRecord decides whether a request from the client at the given time
// is admitted, recording it if so. Denied requests are not recorded and do
// not extend the client's window.
func (l *Limiter) CheckAndRecord(clientID string, now time.Time) (bool, Info) {
	nowSec := now.Unix()

	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.purge(clientID, nowSec)
	count := len(stamps)

	info := Info{
		Limit:        l.limit,
		Remaining:    l.limit - count,
		ResetAt:      nowSec + l.window,
		CurrentCount: count,
	}

	if count >= l.limit {
		info.Remaining = 0
		return false, info
	}

	l.clients[clientID] = append(stamps, nowSec)
	info.Remaining = l.limit - count - 1
	info.CurrentCount = count + 1
	return true, info
}

// purge trims timestamps older than the window from the front of the
// client's sequence. Must be called with mu held. Timestamps are appended in
// non-decreasing order, so expired entries always form a prefix.
func (l *Limiter) purge(clientID string, nowSec int64) []int64 {
	stamps := l.clients[clientID]
	i := 0
	for i < len(stamps) && nowSec-stamps[i] > l.window {
		i++
	}
	if i > 0 {
		stamps = stamps[i:]
		l.clients[clientID] = stamps
	}
	return stamps
}

// Limit returns the configured per-window request limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the window length.
func (l *Limiter) Window() time.Duration {
	return time.Duration(l.window) * time.Second
}

// Clients returns the number of tracked client buckets, including idle ones
// not yet swept.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Sweep removes client buckets whose window is empty at the given time and
// returns the number removed. Without sweeping, the client map would grow
// with every distinct identity ever seen.
func (l *Limiter) Sweep(now time.Time) int {
	nowSec := now.Unix()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for clientID := range l.clients {
		if len(l.purge(clientID, nowSec)) == 0 {
			delete(l.clients, clientID)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep at the given interval until ctx is cancelled.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if removed := l.Sweep(now); removed > 0 {
					logging.Debug().Int("removed", removed).Msg("Swept idle rate limit buckets")
				}
			}
		}
	}()
}
