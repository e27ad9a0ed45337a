// Package kanri provides the authentication core of a small content-management
// backend: single-administrator credential verification, Redis-backed session
// records, and a brute-force rate limiter keyed by caller identity.
//
// The package is designed for request-per-invocation server workloads: Engine
// methods are safe to call from multiple goroutines, hold no in-process mutable
// state, and treat the backing store as the sole source of truth.
//
// # Architecture boundaries
//
// kanri is the public surface. It exposes [Engine], [Config], and the error
// taxonomy. Session persistence lives in the session sub-package; the attempt
// limiter and byte-level primitives live under internal/ and are never
// exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients or record encodings in its public API.
//   - Leak which credential field failed, or why a session token is invalid.
//   - Swallow store outages: infrastructure failure is always distinguishable
//     from a legitimate denial.
package kanri
