// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// UnknownAddress is the sentinel used when no client address can be
// determined. Address extraction never fails.
const UnknownAddress = "unknown"

// delimiter separates bundle fields before hashing so that field boundaries
// shift the digest ("ab"+"c" and "a"+"bc" fingerprint differently).
const delimiter = "|"

// Bundle is the transport and header metadata an anonymous caller is
// identified by. Missing fields stay empty strings.
type Bundle struct {
	NetworkAddress string
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string
}

// Generate derives the caller's identity string: SHA-256 over the
// delimiter-joined bundle fields, hex encoded. Deterministic and pure; the
// same bundle always yields the same 64-character string.
//
// Callers behind one NAT address with identical browser configuration
// collapse to the same identity. That false merge is accepted; it is the
// cost of not requiring login.
func Generate(b Bundle) string {
	joined := strings.Join([]string{
		b.NetworkAddress,
		b.UserAgent,
		b.AcceptLanguage,
		b.AcceptEncoding,
	}, delimiter)

	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// FromRequest extracts the bundle from an HTTP request and returns its
// fingerprint alongside it. Absent headers are empty strings, never errors.
func FromRequest(r *http.Request) (string, Bundle) {
	b := Bundle{
		NetworkAddress: ClientIP(r),
		UserAgent:      r.Header.Get("User-Agent"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
		AcceptEncoding: r.Header.Get("Accept-Encoding"),
	}
	return Generate(b), b
}

// ClientIP extracts the client network address.
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For (load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP in chain; proxies may pad entries with whitespace
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	// Check X-Real-IP (nginx)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	addr := r.RemoteAddr
	if addr == "" {
		return UnknownAddress
	}

	// Strip port if present
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
