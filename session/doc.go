// Package session persists administrator session records in Redis and renders
// the transport cookie directives for them.
//
// Records are exclusively owned by the store: nothing caches them across
// requests, expiry is the store's native per-key TTL plus a timestamp check at
// read time, and revocation manifests as absence. No tombstones are kept.
package session
