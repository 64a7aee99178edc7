// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

// Package metrics provides Prometheus instrumentation for the streaming,
// rate-limiting, and analytics-cache paths. All collectors are registered on
// the default registry and exposed via /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Signed link metrics
	LinkMinted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_links_minted_total",
			Help: "Total number of signed stream links minted",
		},
	)

	LinkVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_link_verifications_total",
			Help: "Total number of stream link verification attempts",
		},
		[]string{"result"}, // "ok", "rejected"
	)

	// Rate limiter metrics
	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Total number of rate limiter admission decisions",
		},
		[]string{"decision"}, // "allowed", "denied"
	)

	RateLimitClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limit_tracked_clients",
			Help: "Current number of client buckets tracked by the rate limiter",
		},
	)

	// Analytics cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_cache_hits_total",
			Help: "Total number of analytics cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_cache_misses_total",
			Help: "Total number of analytics cache misses",
		},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cache_errors_total",
			Help: "Total number of analytics cache backend errors",
		},
		[]string{"operation"}, // "get", "put", "invalidate"
	)

	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_cache_invalidations_total",
			Help: "Total number of analytics cache invalidations",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// View log metrics
	ViewsLogged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_views_logged_total",
			Help: "Total number of media view events persisted",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
