package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitDefaults(t *testing.T) {
	for _, k := range []string{
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_REFILL_TOKENS",
		"RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_TTL", "RATE_LIMIT_KEY_STRATEGY",
		"RATE_LIMIT_PREFIX", "RATE_LIMIT_BURST", "RATE_LIMIT_REFILL_EVERY",
	} {
		t.Setenv(k, "")
	}
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Capacity)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, "ticketing:rl", cfg.Prefix)
	assert.Equal(t, "ip_user_route", cfg.KeyStrategy)
}

func TestRateLimitTTLFloor(t *testing.T) {
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	// The bucket must outlive several refill cycles or idle buckets reset.
	assert.Equal(t, 5*time.Minute, cfg.TTL)
}

func TestCacheDefaults(t *testing.T) {
	for _, k := range []string{
		"CACHE_ENABLED", "CACHE_METHODS", "CACHE_TTL", "CACHE_KEY_STRATEGY",
		"CACHE_PREFIX", "CACHE_MAX_BODY_BYTES",
	} {
		t.Setenv(k, "")
	}
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true}, cfg.Methods)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, "ticketing:cache", cfg.Prefix)
	assert.Equal(t, 1048576, cfg.MaxBodyBytes)
}

func TestCacheMethodsParsing(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
}

func TestOptionalDurationAndIntHelpers(t *testing.T) {
	t.Setenv("ADMISSION_TIMEOUT", "")
	assert.Equal(t, 90*time.Second, mustDur("ADMISSION_TIMEOUT", 90*time.Second))
	t.Setenv("ADMISSION_TIMEOUT", "2m")
	assert.Equal(t, 2*time.Minute, mustDur("ADMISSION_TIMEOUT", 90*time.Second))

	t.Setenv("WAIT_STATS_WINDOW", "")
	assert.Equal(t, 50, mustIntDefault("WAIT_STATS_WINDOW", 50))
	t.Setenv("WAIT_STATS_WINDOW", "10")
	assert.Equal(t, 10, mustIntDefault("WAIT_STATS_WINDOW", 50))
}
