// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/streamvault/streamvault/internal/logging"
	"github.com/streamvault/streamvault/internal/metrics"
	"github.com/streamvault/streamvault/internal/models"
	"github.com/streamvault/streamvault/internal/ratelimit"
)

type authContextKey string

// userIDKey carries the authenticated admin's user ID through the request
// context.
const userIDKey authContextKey = "user_id"

// UserIDFromContext returns the authenticated user ID, if any.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestID assigns each request an ID, exposes it via the X-Request-ID
// header, and threads it through the logging context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate requires a valid Bearer token and stores the subject user ID
// in the request context. Every rejection gets the same generic message.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Could not validate credentials", nil)
			return
		}

		userID, err := h.auth.VerifyToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Could not validate credentials", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimitViews guards the view-logging path with the sliding-window
// limiter. Denied requests receive 429 with machine-readable retry
// metadata; admitted requests proceed with quota headers set.
func (h *Handler) RateLimitViews(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.config.RateLimit.Disabled {
			next.ServeHTTP(w, r)
			return
		}

		clientID := ratelimit.ClientIdentity(r)
		allowed, info := h.limiter.CheckAndRecord(clientID, h.now())

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt, 10))

		if !allowed {
			metrics.RateLimitDecisions.WithLabelValues("denied").Inc()
			retryAfter := int(h.limiter.Window().Seconds())
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			logging.Warn().
				Str("client", sanitizeLogValue(clientID)).
				Int("count", info.CurrentCount).
				Int("limit", info.Limit).
				Msg("Rate limit exceeded")

			respondJSON(w, http.StatusTooManyRequests, &models.APIResponse{
				Status:   "error",
				Metadata: models.Metadata{Timestamp: time.Now()},
				Error: &models.APIError{
					Code:    "RATE_LIMIT_EXCEEDED",
					Message: "Rate limit exceeded. Too many requests.",
					Details: map[string]interface{}{
						"limit":       info.Limit,
						"reset_at":    info.ResetAt,
						"retry_after": retryAfter,
					},
				},
			})
			return
		}

		metrics.RateLimitDecisions.WithLabelValues("allowed").Inc()
		metrics.RateLimitClients.Set(float64(h.limiter.Clients()))
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// PrometheusMetrics records request counts and latencies labeled by the chi
// route pattern, so path parameters do not explode cardinality.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		endpoint := r.URL.Path
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		metrics.RecordAPIRequest(r.Method, endpoint, recorder.status, time.Since(start))
	})
}
