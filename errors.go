package kanri

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by Authenticate when the submitted
	// identity/secret pair does not match the configured administrator.
	// It never indicates which field was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginRateLimited is returned by Authenticate when the caller's
	// identity is over the attempt budget or inside a block window.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrSessionInvalid is returned by Validate for an absent, expired, or
	// hijack-suspected token. The three conditions are deliberately
	// indistinguishable to callers.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrStoreUnavailable is returned when the backing store itself fails.
	// Callers must fail the request rather than default to allow or deny.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrConfigInvalid is returned by New when required configuration is missing.
	ErrConfigInvalid = errors.New("invalid configuration")
)

// RateLimitedError carries the retry timestamp of a rate-limit denial.
// It unwraps to [ErrLoginRateLimited].
type RateLimitedError struct {
	// RetryAfter is the Unix timestamp (seconds) at which the caller's
	// block window ends.
	RetryAfter int64
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("login rate limited until %d", e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error {
	return ErrLoginRateLimited
}
