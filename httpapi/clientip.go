package httpapi

import (
	"net/http"
	"strings"
)

// clientIP resolves the caller's address for rate-limit grouping: the edge
// proxy's header when present, else the first X-Forwarded-For entry, else a
// loopback sentinel for direct local connections. The value is a grouping
// key, not a validated address.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	return "127.0.0.1"
}
