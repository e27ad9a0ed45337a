package kanri

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shiroyama-web/kanri/internal/ratelimit"
	"github.com/shiroyama-web/kanri/internal/secure"
	"github.com/shiroyama-web/kanri/session"
)

// Engine decides, for every incoming request, whether a caller is an
// authenticated administrator and whether a caller attempting to authenticate
// should be allowed to try. It holds no in-process mutable state; every
// operation is a read-modify-write cycle against Redis.
type Engine struct {
	config   Config
	sessions *session.Store
	limiter  *ratelimit.Limiter
}

// New creates an [Engine] backed by the given Redis client. The administrator
// identity and secret are required; everything else takes defaults.
func New(redisClient redis.UniversalClient, cfg Config) (*Engine, error) {
	if cfg.Admin.ID == "" || cfg.Admin.Secret == "" {
		return nil, fmt.Errorf("%w: admin id and secret are required", ErrConfigInvalid)
	}
	cfg.applyDefaults()

	return &Engine{
		config:   cfg,
		sessions: session.NewStore(redisClient, cfg.Session.RedisPrefix),
		limiter: ratelimit.New(redisClient, ratelimit.Config{
			Prefix:               cfg.RateLimit.RedisPrefix,
			MaxAttemptsPerSecond: cfg.RateLimit.MaxAttemptsPerSecond,
			AttemptWindow:        cfg.RateLimit.AttemptWindow,
			BlockDuration:        cfg.RateLimit.BlockDuration,
		}),
	}, nil
}

// LoginResult is the outcome of a successful Authenticate call.
type LoginResult struct {
	// Token is the bearer session token (lowercase hex).
	Token string
	// Cookie is the ready-to-send Set-Cookie directive for Token.
	Cookie string
	// ExpiresAt is the session expiry as a Unix timestamp.
	ExpiresAt int64
}

// Authenticate verifies the submitted credential pair and mints a session.
//
// The caller's identity (client IP via [WithClientIP]) is checked against the
// attempt limiter first; a denial returns a [*RateLimitedError] without any
// credential comparison. When admitted, both fields are compared in constant
// time unconditionally; total latency does not depend on which field or
// position first differs.
func (e *Engine) Authenticate(ctx context.Context, id, secret string) (*LoginResult, error) {
	identity := clientIPFromContext(ctx)

	dec, err := e.limiter.Check(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !dec.Allowed {
		return nil, &RateLimitedError{RetryAfter: dec.RetryAfter}
	}

	idMatch := secure.Equal(id, e.config.Admin.ID)
	secretMatch := secure.Equal(secret, e.config.Admin.Secret)
	if !idMatch || !secretMatch {
		return nil, ErrInvalidCredentials
	}

	rec, err := e.sessions.Create(ctx, userAgentFromContext(ctx), e.config.Session.TTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &LoginResult{
		Token:     rec.ID,
		Cookie:    session.Cookie(rec.ID, e.config.Session.TTL),
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Validate resolves a bearer token to its session record. Absent, expired,
// and hijack-suspected tokens all collapse to [ErrSessionInvalid]; the latter
// two delete the record first. Validity is established for this request only,
// nothing is cached.
func (e *Engine) Validate(ctx context.Context, token string) (*session.Record, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	rec, err := e.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	userAgent := userAgentFromContext(ctx)
	if rec.UserAgent != "" && userAgent != "" && rec.UserAgent != userAgent {
		// Hijack signal: same token presented by a different client.
		if err := e.sessions.Delete(ctx, token); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil, ErrSessionInvalid
	}

	return rec, nil
}

// Revoke deletes the session record for token if present. Idempotent: absent
// and already-expired tokens revoke without error. The clearing cookie is
// produced by [session.ClearCookie] regardless of whether a record existed.
func (e *Engine) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := e.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// CheckRate runs one attempt-recording rate check for identity. Exposed for
// handlers that gate non-login probes on the same budget.
func (e *Engine) CheckRate(ctx context.Context, identity string) (ratelimit.Decision, error) {
	dec, err := e.limiter.Check(ctx, identity)
	if err != nil {
		return ratelimit.Decision{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return dec, nil
}

// ResetRate clears the attempt record for identity. Operator affordance.
func (e *Engine) ResetRate(ctx context.Context, identity string) error {
	if err := e.limiter.Reset(ctx, identity); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
