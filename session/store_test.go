package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, "sess"), rdb, mr
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	store, _, mr := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Create(ctx, "UA-A", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(rec.ID) != 64 {
		t.Fatalf("expected 64-char hex id, got %q", rec.ID)
	}
	if rec.ExpiresAt != rec.CreatedAt+3600 {
		t.Fatalf("expiresAt = %d, want createdAt+3600 = %d", rec.ExpiresAt, rec.CreatedAt+3600)
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != rec.ID || got.UserAgent != "UA-A" || got.ExpiresAt != rec.ExpiresAt {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, rec)
	}

	if ttl := mr.TTL("sess:" + rec.ID); ttl != time.Hour {
		t.Fatalf("store TTL = %v, want %v", ttl, time.Hour)
	}
}

func TestGetUnknownTokenIsNotFound(t *testing.T) {
	store, _, _ := newTestStore(t)

	if _, err := store.Get(context.Background(), "deadbeef"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetDeletesExpiredRecordLazily(t *testing.T) {
	store, rdb, _ := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Create(ctx, "", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Shift the wall clock past the stored expiry; the key itself has not
	// hit its store TTL yet, so only the timestamp guard can catch it.
	store.now = func() time.Time { return time.Unix(rec.ExpiresAt+1, 0) }

	if _, err := store.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired record, got %v", err)
	}

	if err := rdb.Get(ctx, "sess:"+rec.ID).Err(); err != redis.Nil {
		t.Fatalf("expired record should be deleted on read, got %v", err)
	}
}

func TestGetAfterStoreTTLExpiryIsNotFound(t *testing.T) {
	store, _, mr := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Create(ctx, "", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	mr.FastForward(time.Hour + time.Second)

	if _, err := store.Get(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL expiry, got %v", err)
	}
}

func TestGetTreatsCorruptBlobAsNotFound(t *testing.T) {
	store, rdb, _ := newTestStore(t)
	ctx := context.Background()

	if err := rdb.Set(ctx, "sess:feedface", "{broken", time.Hour).Err(); err != nil {
		t.Fatalf("seed corrupt blob failed: %v", err)
	}

	if _, err := store.Get(ctx, "feedface"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for corrupt blob, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Create(ctx, "", time.Hour)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := store.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := store.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if err := store.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("delete of absent record failed: %v", err)
	}
}

func TestStoreOutageSurfacesAsUnavailable(t *testing.T) {
	store, _, mr := newTestStore(t)
	ctx := context.Background()

	mr.Close()

	if _, err := store.Create(ctx, "", time.Hour); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from create, got %v", err)
	}
	if _, err := store.Get(ctx, "deadbeef"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from get, got %v", err)
	}
	if err := store.Delete(ctx, "deadbeef"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from delete, got %v", err)
	}
}

func TestCookieDirectives(t *testing.T) {
	got := Cookie("abc123", time.Hour)
	want := "sid=abc123; Path=/; HttpOnly; Secure; SameSite=Strict; Max-Age=3600"
	if got != want {
		t.Fatalf("cookie = %q, want %q", got, want)
	}

	gotClear := ClearCookie()
	wantClear := "sid=; Path=/; HttpOnly; Secure; SameSite=Strict; Max-Age=0"
	if gotClear != wantClear {
		t.Fatalf("clear cookie = %q, want %q", gotClear, wantClear)
	}
}

func TestTokenFromCookieHeader(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"single", "sid=abc123", "abc123"},
		{"among others", "theme=dark; sid=abc123; lang=ja", "abc123"},
		{"missing", "theme=dark", ""},
		{"empty value", "sid=", ""},
		{"empty header", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TokenFromCookieHeader(tc.header); got != tc.want {
				t.Fatalf("TokenFromCookieHeader(%q) = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}
