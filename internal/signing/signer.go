// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

// Package signing implements HMAC-signed capability URLs for media streaming.
//
// A signed link grants time-boxed read access to exactly one resource path.
// Possession of the URL is the only credential: any backend instance holding
// the same secret can verify a link minted by any other instance, so there is
// no link registry and no revocation bookkeeping. Rotating the secret
// invalidates every outstanding link at once.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// SignedLink is a minted capability for one resource path. It is derived,
// never persisted; verification recomputes the signature on each use.
type SignedLink struct {
	Path      string
	ExpiresAt int64 // Unix seconds
	Signature string
}

// URL encodes the link as a fetchable URL under the given base,
// e.g. "https://host" + "/media/stream/42" + "?exp=1600&sig=ab12...".
func (l SignedLink) URL(base string) string {
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(l.ExpiresAt, 10))
	q.Set("sig", l.Signature)
	return base + l.Path + "?" + q.Encode()
}

// Signer mints and verifies signed links. It holds only the immutable
// signing secret and is safe for unsynchronized concurrent use.
type Signer struct {
	secret []byte
}

// New creates a Signer with the given symmetric secret.
func New(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Mint creates a signed link for the resource path that expires ttl after now.
// The path must be passed to Verify byte-identically to how it was minted
// (same case, same leading slash, no trailing slash).
func (s *Signer) Mint(path string, ttl time.Duration, now time.Time) SignedLink {
	expiresAt := now.Unix() + int64(ttl.Seconds())
	return SignedLink{
		Path:      path,
		ExpiresAt: expiresAt,
		Signature: s.sign(path, expiresAt),
	}
}

// Verify reports whether the signature is valid for the path and expiry, and
// the link has not expired. A link expires at its exp instant: verifying at
// now == ExpiresAt fails. Signature comparison is constant time so that
// verification latency does not leak the position of the first wrong byte.
func (s *Signer) Verify(path string, expiresAt int64, signature string, now time.Time) bool {
	if now.Unix() >= expiresAt {
		return false
	}
	expected := s.sign(path, expiresAt)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// sign computes the lowercase hex HMAC-SHA256 digest over the canonical
// message "<path>?exp=<decimal expiry>".
func (s *Signer) sign(path string, expiresAt int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s?exp=%d", path, expiresAt)
	return hex.EncodeToString(mac.Sum(nil))
}
