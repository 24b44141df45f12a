package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the catalog response cache.  When
// Enabled is false or no Redis client is configured, caching is skipped.
// Only the public product routes are wrapped; authenticated responses are
// never cached because they vary by session cookie.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

var cacheKeyStrategies = map[string]bool{"route": true, "route_query": true, "method_route_query": true}

func (l *loader) cache() CacheConfig {
    cc := CacheConfig{
        Enabled:      l.bool("CACHE_ENABLED", true),
        Methods:      map[string]bool{},
        TTL:          l.dur("CACHE_TTL", 30*time.Second),
        KeyStrategy:  l.str("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       l.str("CACHE_PREFIX", "catalog"),
        MaxBodyBytes: l.int("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    for _, m := range l.list("CACHE_METHODS", "GET") {
        cc.Methods[strings.ToUpper(m)] = true
    }
    if cc.TTL <= 0 {
        l.fail("CACHE_TTL must be positive, got %s", cc.TTL)
    }
    if cc.MaxBodyBytes < 0 {
        l.fail("CACHE_MAX_BODY_BYTES must not be negative, got %d", cc.MaxBodyBytes)
    }
    if !cacheKeyStrategies[cc.KeyStrategy] {
        l.fail("CACHE_KEY_STRATEGY must be route, route_query or method_route_query, got %q", cc.KeyStrategy)
    }
    return cc
}
