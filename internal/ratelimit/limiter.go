package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the attempt record store itself fails.
var ErrRedisUnavailable = errors.New("rate limit store unavailable")

// Config holds limiter tuning parameters. Zero fields take the defaults
// documented on each field.
type Config struct {
	// Prefix namespaces attempt record keys as "<prefix>:<identity>".
	// Defaults to "rate".
	Prefix string
	// MaxAttemptsPerSecond is the burst threshold. Defaults to 10.
	MaxAttemptsPerSecond int
	// AttemptWindow bounds how long attempt timestamps are retained.
	// Defaults to 2s.
	AttemptWindow time.Duration
	// BlockDuration is the cooldown once the threshold is hit, and the
	// store TTL of every record write. Defaults to 1h.
	BlockDuration time.Duration
	// Now overrides the clock. Nil means time.Now. Tests only.
	Now func() time.Time
}

// Decision is the outcome of a single Check call.
type Decision struct {
	Allowed bool
	// RetryAfter is the Unix timestamp at which the block ends.
	// Set only when Allowed is false.
	RetryAfter int64
}

// attemptRecord is the stored shape of one identity's recent history.
// Attempts is a sliding window of Unix timestamps in insertion order;
// once Blocked is set the window is cleared, block state subsumes it.
type attemptRecord struct {
	Attempts     []int64 `json:"attempts"`
	Blocked      bool    `json:"blocked,omitempty"`
	BlockedUntil int64   `json:"blockedUntil,omitempty"`
}

// Limiter bounds the rate of authentication attempts per caller identity.
// It keeps no in-process state; every Check is a read-modify-write cycle
// against Redis. The read-then-write pair is not transactional: concurrent
// attempts from one identity can undercount by up to concurrency-1, an
// accepted approximation for a sequential brute-force deterrent.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
	now    func() time.Time
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "rate"
	}
	if cfg.MaxAttemptsPerSecond <= 0 {
		cfg.MaxAttemptsPerSecond = 10
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 2 * time.Second
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = time.Hour
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Limiter{
		redis:  redisClient,
		config: cfg,
		now:    now,
	}
}

func (l *Limiter) key(identity string) string {
	return l.config.Prefix + ":" + identity
}

// Check admits or denies one authentication attempt by identity and records
// it. Callers must invoke Check exactly once per inbound attempt, before or
// independent of credential verification.
//
// An existing block is left untouched so it persists until natural expiry;
// an elapsed block resets the record; a corrupt record is discarded and
// counting restarts from zero for this call.
func (l *Limiter) Check(ctx context.Context, identity string) (Decision, error) {
	key := l.key(identity)
	now := l.now().Unix()

	var rec attemptRecord
	data, err := l.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return Decision{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	} else if jsonErr := json.Unmarshal(data, &rec); jsonErr != nil {
		rec = attemptRecord{}
	}

	if rec.Blocked && rec.BlockedUntil > 0 {
		if now < rec.BlockedUntil {
			return Decision{Allowed: false, RetryAfter: rec.BlockedUntil}, nil
		}
		// Block elapsed: previous attempts must not resurrect it.
		rec = attemptRecord{}
	}

	windowSec := int64(l.config.AttemptWindow / time.Second)
	kept := rec.Attempts[:0]
	recent := 0
	for _, ts := range rec.Attempts {
		if now-ts >= windowSec {
			continue
		}
		kept = append(kept, ts)
		if now-ts < 1 {
			recent++
		}
	}
	rec.Attempts = kept

	// The in-flight attempt counts: the tenth attempt within a rolling
	// second is the one that trips a threshold of ten.
	if recent+1 >= l.config.MaxAttemptsPerSecond {
		rec = attemptRecord{
			Blocked:      true,
			BlockedUntil: now + int64(l.config.BlockDuration/time.Second),
		}
		if err := l.persist(ctx, key, rec); err != nil {
			return Decision{}, err
		}
		return Decision{Allowed: false, RetryAfter: rec.BlockedUntil}, nil
	}

	rec.Attempts = append(rec.Attempts, now)
	if err := l.persist(ctx, key, rec); err != nil {
		return Decision{}, err
	}

	return Decision{Allowed: true}, nil
}

// Reset unconditionally deletes the attempt record for identity. Operator
// affordance; never exposed to unauthenticated callers.
func (l *Limiter) Reset(ctx context.Context, identity string) error {
	if err := l.redis.Del(ctx, l.key(identity)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) persist(ctx context.Context, key string, rec attemptRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := l.redis.Set(ctx, key, data, l.config.BlockDuration).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
