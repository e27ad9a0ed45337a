package kanri

import "time"

// Config holds the immutable engine configuration. Values are copied at
// construction; mutating a Config after New has no effect on a running Engine.
type Config struct {
	Admin     AdminConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

// AdminConfig is the single static administrator identity/secret pair.
// Both fields are compared, never persisted.
type AdminConfig struct {
	ID     string
	Secret string
}

// SessionConfig controls session record lifetime and key namespacing.
type SessionConfig struct {
	// TTL is the session lifetime. Unset or invalid values fall back to
	// DefaultSessionTTL.
	TTL time.Duration
	// RedisPrefix namespaces session keys. Defaults to "sess".
	RedisPrefix string
}

// RateLimitConfig tunes the login attempt limiter.
type RateLimitConfig struct {
	// RedisPrefix namespaces attempt records. Defaults to "rate".
	RedisPrefix string
	// MaxAttemptsPerSecond is the burst threshold: this many attempts
	// within any rolling second triggers a block.
	MaxAttemptsPerSecond int
	// AttemptWindow is how long individual attempt timestamps are retained.
	AttemptWindow time.Duration
	// BlockDuration is the cooldown imposed once the threshold is hit,
	// and also the store TTL applied to attempt records.
	BlockDuration time.Duration
}

// DefaultSessionTTL is applied when SessionConfig.TTL is unset or invalid.
const DefaultSessionTTL = time.Hour

// DefaultConfig returns a Config with production defaults applied.
// Admin credentials are intentionally left empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL:         DefaultSessionTTL,
			RedisPrefix: "sess",
		},
		RateLimit: RateLimitConfig{
			RedisPrefix:          "rate",
			MaxAttemptsPerSecond: 10,
			AttemptWindow:        2 * time.Second,
			BlockDuration:        time.Hour,
		},
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Session.TTL <= 0 {
		c.Session.TTL = def.Session.TTL
	}
	if c.Session.RedisPrefix == "" {
		c.Session.RedisPrefix = def.Session.RedisPrefix
	}
	if c.RateLimit.RedisPrefix == "" {
		c.RateLimit.RedisPrefix = def.RateLimit.RedisPrefix
	}
	if c.RateLimit.MaxAttemptsPerSecond <= 0 {
		c.RateLimit.MaxAttemptsPerSecond = def.RateLimit.MaxAttemptsPerSecond
	}
	if c.RateLimit.AttemptWindow <= 0 {
		c.RateLimit.AttemptWindow = def.RateLimit.AttemptWindow
	}
	if c.RateLimit.BlockDuration <= 0 {
		c.RateLimit.BlockDuration = def.RateLimit.BlockDuration
	}
}
