// Package config loads the service configuration from environment
// variables. All knobs are flat upper-case env vars; secrets can be
// injected through *_FILE companions for container deployments.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds all service configuration.
type Config struct {
	// Administrator credential
	AdminID     string `koanf:"admin_id"`
	AdminSecret string `koanf:"admin_secret"`

	// Session store
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	SessionTTL    time.Duration `koanf:"session_ttl"`

	// Content storage
	DataDir          string `koanf:"data_dir"`
	MaxImagesPerKind int    `koanf:"max_images_per_kind"`

	// HTTP surface
	ListenAddr string `koanf:"listen_addr"`

	// Operational
	LogLevel       string `koanf:"log_level"`
	LogFormat      string `koanf:"log_format"`
	MetricsEnabled bool   `koanf:"metrics_enabled"`
}

// defaults sets sensible default values.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"redis_addr":          "127.0.0.1:6379",
		"redis_db":            0,
		"session_ttl":         "1h",
		"data_dir":            "/data",
		"max_images_per_kind": 10,
		"listen_addr":         ":8080",
		"log_level":           "info",
		"log_format":          "json",
		"metrics_enabled":     true,
	}
}

// fileSecretKeys lists keys whose value may arrive via a *_FILE env var
// pointing at a mounted secret.
var fileSecretKeys = []string{
	"admin_id",
	"admin_secret",
	"redis_password",
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// "." as delimiter keeps env vars with "_" in their names flat instead
	// of splitting them into nested paths.
	k := koanf.New(".")

	if err := k.Load(&rawProvider{data: defaults()}, nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if err := injectFileSecrets(k); err != nil {
		return nil, fmt.Errorf("inject file secrets: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.sanitise()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and semantic constraints.
func (c *Config) Validate() error {
	if c.AdminID == "" {
		return fmt.Errorf("ADMIN_ID is required")
	}
	if c.AdminSecret == "" {
		return fmt.Errorf("ADMIN_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0; got %s", c.SessionTTL)
	}
	if c.MaxImagesPerKind < 1 {
		return fmt.Errorf("MAX_IMAGES_PER_KIND must be >= 1; got %d", c.MaxImagesPerKind)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of trace,debug,info,warn,error,fatal,panic; got %q", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text; got %q", c.LogFormat)
	}

	return nil
}

// sanitise removes a single layer of matching surrounding quotes from all
// string fields. This normalises values from Docker --env-file which does
// not strip shell quoting.
func (c *Config) sanitise() {
	c.AdminID = stripEnvQuotes(c.AdminID)
	c.AdminSecret = stripEnvQuotes(c.AdminSecret)
	c.RedisAddr = stripEnvQuotes(c.RedisAddr)
	c.RedisPassword = stripEnvQuotes(c.RedisPassword)
	c.DataDir = stripEnvQuotes(c.DataDir)
	c.ListenAddr = stripEnvQuotes(c.ListenAddr)
	c.LogLevel = stripEnvQuotes(c.LogLevel)
	c.LogFormat = stripEnvQuotes(c.LogFormat)
}

// stripEnvQuotes removes a single layer of matching surrounding single or
// double quotes. Unpaired or mismatched quotes are left as-is.
func stripEnvQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	if (s[0] == '\'' && s[len(s)-1] == '\'') ||
		(s[0] == '"' && s[len(s)-1] == '"') {
		return s[1 : len(s)-1]
	}
	return s
}

func injectFileSecrets(k *koanf.Koanf) error {
	for _, key := range fileSecretKeys {
		filePath := k.String(key + "_file")
		if filePath == "" {
			filePath = os.Getenv(strings.ToUpper(key) + "_FILE")
		}
		if filePath == "" {
			continue
		}
		filePath = stripEnvQuotes(filePath)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("reading secret file for %s (%s): %w", key, filePath, err)
		}
		if err := k.Set(key, strings.TrimSpace(string(content))); err != nil {
			return fmt.Errorf("setting %s from file: %w", key, err)
		}
	}
	return nil
}

// rawProvider implements koanf.Provider for a map[string]interface{}.
type rawProvider struct {
	data map[string]interface{}
}

func (r *rawProvider) Read() (map[string]interface{}, error) {
	return r.data, nil
}

func (r *rawProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("rawProvider does not support ReadBytes")
}
