// Package httpapi exposes the admin backend over HTTP: login/logout, the
// session-guarded content and image endpoints, and the public content read.
// It owns every transport concern (cookie and header extraction, status
// mapping, CORS for public reads) and translates the engine's error
// taxonomy into statuses: 401 for invalid sessions and credentials, 429 with
// Retry-After for rate-limit denials, 503 for store outages.
package httpapi
