// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the shared bucket for requests with no resolvable origin.
// Anonymized clients falling into it are throttled together; an accepted
// tradeoff over failing the request.
const UnknownClient = "unknown"

// ClientIdentity resolves the identity string used to key the client's
// request window. Precedence: first X-Forwarded-For entry, then X-Real-IP,
// then the transport peer address, then UnknownClient.
func ClientIdentity(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			if id := strings.TrimSpace(first); id != "" {
				return id
			}
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}

	return UnknownClient
}
