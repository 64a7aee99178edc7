// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200"))

	RecordAPIRequest("GET", "/api/v1/health", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200"))
	if after != before+1 {
		t.Errorf("expected counter to increment by 1, got %v -> %v", before, after)
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(LinkVerifications.WithLabelValues("rejected"))
	LinkVerifications.WithLabelValues("rejected").Inc()
	after := testutil.ToFloat64(LinkVerifications.WithLabelValues("rejected"))
	if after != before+1 {
		t.Errorf("expected rejection counter to increment, got %v -> %v", before, after)
	}

	before = testutil.ToFloat64(RateLimitDecisions.WithLabelValues("denied"))
	RateLimitDecisions.WithLabelValues("denied").Inc()
	after = testutil.ToFloat64(RateLimitDecisions.WithLabelValues("denied"))
	if after != before+1 {
		t.Errorf("expected denial counter to increment, got %v -> %v", before, after)
	}
}
