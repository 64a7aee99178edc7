// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package signing

import (
	"strings"
	"testing"
	"time"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	s := New("test-secret")
	now := time.Unix(1000, 0)

	link := s.Mint("/media/stream/42", 600*time.Second, now)

	if link.Path != "/media/stream/42" {
		t.Errorf("unexpected path %q", link.Path)
	}
	if link.ExpiresAt != 1600 {
		t.Errorf("expected expiry 1600, got %d", link.ExpiresAt)
	}
	if len(link.Signature) != 64 {
		t.Errorf("expected 64-char hex signature, got %d chars", len(link.Signature))
	}
	if link.Signature != strings.ToLower(link.Signature) {
		t.Error("signature must be lowercase hex")
	}

	if !s.Verify(link.Path, link.ExpiresAt, link.Signature, now) {
		t.Error("freshly minted link must verify")
	}
}

func TestVerifyExpiry(t *testing.T) {
	s := New("test-secret")
	link := s.Mint("/media/stream/42", 600*time.Second, time.Unix(1000, 0))

	// Valid until the last second before expiry.
	if !s.Verify(link.Path, link.ExpiresAt, link.Signature, time.Unix(1599, 0)) {
		t.Error("link must verify at t=1599")
	}

	// Expires exactly at the exp instant, with no grace period.
	if s.Verify(link.Path, link.ExpiresAt, link.Signature, time.Unix(1600, 0)) {
		t.Error("link must not verify at t=1600")
	}
	if s.Verify(link.Path, link.ExpiresAt, link.Signature, time.Unix(2000, 0)) {
		t.Error("link must not verify after expiry")
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	s := New("test-secret")
	now := time.Unix(1000, 0)
	link := s.Mint("/media/stream/42", 600*time.Second, now)

	// Flip one hex digit.
	sig := []byte(link.Signature)
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}
	if s.Verify(link.Path, link.ExpiresAt, string(sig), now) {
		t.Error("tampered signature must not verify")
	}
}

func TestVerifyTamperedExpiry(t *testing.T) {
	s := New("test-secret")
	now := time.Unix(1000, 0)
	link := s.Mint("/media/stream/42", 600*time.Second, now)

	if s.Verify(link.Path, link.ExpiresAt+3600, link.Signature, now) {
		t.Error("extended expiry must invalidate the signature")
	}
}

func TestVerifyTamperedPath(t *testing.T) {
	s := New("test-secret")
	now := time.Unix(1000, 0)
	link := s.Mint("/media/stream/42", 600*time.Second, now)

	for _, path := range []string{
		"/media/stream/43",
		"/media/stream/42/",
		"/Media/stream/42",
		"media/stream/42",
	} {
		if s.Verify(path, link.ExpiresAt, link.Signature, now) {
			t.Errorf("mismatched path %q must not verify", path)
		}
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	now := time.Unix(1000, 0)
	link := New("secret-a").Mint("/media/stream/42", 600*time.Second, now)

	if New("secret-b").Verify(link.Path, link.ExpiresAt, link.Signature, now) {
		t.Error("link signed with a different secret must not verify")
	}
}

func TestSignatureDeterministic(t *testing.T) {
	s := New("test-secret")
	a := s.Mint("/media/stream/7", 60*time.Second, time.Unix(500, 0))
	b := s.Mint("/media/stream/7", 60*time.Second, time.Unix(500, 0))

	if a.Signature != b.Signature {
		t.Error("same path, expiry, and secret must produce the same signature")
	}
}

func TestURLEncoding(t *testing.T) {
	s := New("test-secret")
	link := s.Mint("/media/stream/42", 600*time.Second, time.Unix(1000, 0))

	u := link.URL("http://127.0.0.1:8080")
	want := "http://127.0.0.1:8080/media/stream/42?exp=1600&sig=" + link.Signature
	if u != want {
		t.Errorf("URL mismatch:\n got %q\nwant %q", u, want)
	}
}
