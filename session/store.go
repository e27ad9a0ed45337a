package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shiroyama-web/kanri/internal/secure"
)

// ErrNotFound is returned when no usable record exists for a token: absent,
// expired, or corrupt blobs all collapse to it.
var ErrNotFound = errors.New("session not found")

// ErrRedisUnavailable is returned when the session store itself fails.
var ErrRedisUnavailable = errors.New("session store unavailable")

// Store is a Redis-backed session store. Expiry is enforced twice: the
// store's per-key TTL reclaims abandoned records, and Get checks the stored
// timestamp as a guard against TTL-granularity slack.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix namespaces the keys; records are stored under "<prefix>:<id>".
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "sess"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *Store) key(id string) string {
	return s.prefix + ":" + id
}

// Create mints a new record with a 256-bit random identifier and persists it
// with the given TTL.
func (s *Store) Create(ctx context.Context, userAgent string, ttl time.Duration) (*Record, error) {
	sid, err := secure.NewSessionID()
	if err != nil {
		return nil, err
	}

	now := s.now().Unix()
	rec := &Record{
		ID:        sid.String(),
		CreatedAt: now,
		ExpiresAt: now + int64(ttl/time.Second),
		UserAgent: userAgent,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	if err := s.redis.Set(ctx, s.key(rec.ID), data, ttl).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return rec, nil
}

// Get loads the record for id. An expired record is deleted on sight (lazy
// expiry, no background sweep) and reported as [ErrNotFound]; so is a blob
// that no longer decodes.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, ErrNotFound
	}

	if rec.ExpiresAt < s.now().Unix() {
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	return &rec, nil
}

// Delete removes the record for id. Idempotent: deleting an absent or
// already-expired record succeeds.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
