// Package ratelimit provides the Redis-backed login attempt limiter.
//
// # Window semantics
//
// Sliding-window timestamps, not fixed-window counters: each check prunes the
// stored attempt history to the retention window (2s default), counts the
// strict 1s sub-window, and escalates to a timed block when the burst
// threshold is hit. Every write refreshes the store TTL to the block duration
// so abandoned records self-delete without a sweeper.
//
// # What this package must NOT do
//
//   - Decide what counts as an attempt (callers invoke Check once per
//     inbound authentication attempt; Check is attempt-recording).
//   - Be imported outside the kanri module.
package ratelimit
