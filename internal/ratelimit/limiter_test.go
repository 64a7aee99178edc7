// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package ratelimit

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestSlidingWindowAdmission(t *testing.T) {
	l := New(10, 60*time.Second)
	t0 := time.Unix(0, 0)

	// First 10 requests at t=0 are all admitted.
	for i := 0; i < 10; i++ {
		allowed, info := l.CheckAndRecord("client", t0)
		if !allowed {
			t.Fatalf("request %d should be admitted", i+1)
		}
		if info.CurrentCount != i+1 {
			t.Errorf("request %d: expected count %d, got %d", i+1, i+1, info.CurrentCount)
		}
		if info.Remaining != 10-i-1 {
			t.Errorf("request %d: expected remaining %d, got %d", i+1, 10-i-1, info.Remaining)
		}
	}

	// The 11th is denied with zero remaining.
	allowed, info := l.CheckAndRecord("client", t0)
	if allowed {
		t.Fatal("11th request should be denied")
	}
	if info.Remaining != 0 {
		t.Errorf("expected remaining 0, got %d", info.Remaining)
	}
	if info.CurrentCount != 10 {
		t.Errorf("expected count 10, got %d", info.CurrentCount)
	}
	if info.ResetAt != t0.Unix()+60 {
		t.Errorf("expected reset at %d, got %d", t0.Unix()+60, info.ResetAt)
	}

	// After the window slides past, a new request is admitted.
	t61 := time.Unix(61, 0)
	allowed, info = l.CheckAndRecord("client", t61)
	if !allowed {
		t.Fatal("request after window slide should be admitted")
	}
	if info.CurrentCount != 1 {
		t.Errorf("expected fresh count 1, got %d", info.CurrentCount)
	}
}

func TestDeniedRequestNotRecorded(t *testing.T) {
	l := New(2, 60*time.Second)
	t0 := time.Unix(100, 0)

	l.CheckAndRecord("client", t0)
	l.CheckAndRecord("client", t0)

	// Hammering while denied must not extend the window.
	for i := 0; i < 5; i++ {
		if allowed, _ := l.CheckAndRecord("client", t0.Add(time.Duration(i)*time.Second)); allowed {
			t.Fatal("over-limit request should be denied")
		}
	}

	// The two recorded entries expire 61s after t0 regardless of the denials.
	if allowed, _ := l.CheckAndRecord("client", t0.Add(61*time.Second)); !allowed {
		t.Error("request should be admitted once recorded entries expire")
	}
}

func TestPerClientIsolation(t *testing.T) {
	l := New(3, 60*time.Second)
	t0 := time.Unix(0, 0)

	for i := 0; i < 3; i++ {
		l.CheckAndRecord("c1", t0)
	}
	if allowed, _ := l.CheckAndRecord("c1", t0); allowed {
		t.Fatal("c1 should be exhausted")
	}

	allowed, info := l.CheckAndRecord("c2", t0)
	if !allowed {
		t.Error("c2 must not be affected by c1's quota")
	}
	if info.Remaining != 2 {
		t.Errorf("c2 expected remaining 2, got %d", info.Remaining)
	}
}

func TestEntryExactlyWindowOldStillCounts(t *testing.T) {
	l := New(1, 60*time.Second)

	l.CheckAndRecord("client", time.Unix(0, 0))

	// At t=60 the entry is exactly window-old (60-0 > 60 is false), so it
	// still occupies the slot.
	if allowed, _ := l.CheckAndRecord("client", time.Unix(60, 0)); allowed {
		t.Error("entry exactly window-old should still count")
	}
	if allowed, _ := l.CheckAndRecord("client", time.Unix(61, 0)); !allowed {
		t.Error("entry older than window should be purged")
	}
}

func TestConcurrentAdmissionAtomic(t *testing.T) {
	const limit = 50
	l := New(limit, 60*time.Second)
	now := time.Now()

	var wg sync.WaitGroup
	admitted := make(chan bool, limit*4)
	for i := 0; i < limit*4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _ := l.CheckAndRecord("client", now)
			admitted <- allowed
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for allowed := range admitted {
		if allowed {
			count++
		}
	}
	if count != limit {
		t.Errorf("expected exactly %d admissions, got %d", limit, count)
	}
}

func TestSweepRemovesIdleClients(t *testing.T) {
	l := New(5, 60*time.Second)
	t0 := time.Unix(0, 0)

	l.CheckAndRecord("idle", t0)
	l.CheckAndRecord("active", t0)
	l.CheckAndRecord("active", time.Unix(50, 0))

	if l.Clients() != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", l.Clients())
	}

	// At t=70, "idle" has no entries left in the window; "active" still has
	// the t=50 entry.
	removed := l.Sweep(time.Unix(70, 0))
	if removed != 1 {
		t.Errorf("expected 1 bucket swept, got %d", removed)
	}
	if l.Clients() != 1 {
		t.Errorf("expected 1 tracked client after sweep, got %d", l.Clients())
	}

	removed = l.Sweep(time.Unix(200, 0))
	if removed != 1 {
		t.Errorf("expected remaining bucket swept, got %d", removed)
	}
	if l.Clients() != 0 {
		t.Errorf("expected no tracked clients, got %d", l.Clients())
	}
}

func TestClientIdentityPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded first entry", "203.0.113.7, 10.0.0.1", "198.51.100.2", "192.0.2.1:5555", "203.0.113.7"},
		{"forwarded single entry", "203.0.113.7", "", "192.0.2.1:5555", "203.0.113.7"},
		{"real ip fallback", "", "198.51.100.2", "192.0.2.1:5555", "198.51.100.2"},
		{"peer address fallback", "", "", "192.0.2.1:5555", "192.0.2.1"},
		{"peer address without port", "", "", "192.0.2.1", "192.0.2.1"},
		{"unknown", "", "", "", UnknownClient},
		{"whitespace forwarded falls through", "  ", "198.51.100.2", "", "198.51.100.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/media/stream/1", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := ClientIdentity(r); got != tt.want {
				t.Errorf("ClientIdentity() = %q, want %q", got, tt.want)
			}
		})
	}
}
