package config

import "time"

// RateLimitConfig drives the Redis token bucket placed in front of the
// login endpoint.  It is a policy knob and ships disabled.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
}

var rateKeyStrategies = map[string]bool{"ip": true, "ip_user": true, "ip_route": true}

func (l *loader) rateLimit() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled:        l.bool("RATE_LIMIT_ENABLED", false),
        Capacity:       l.int("RATE_LIMIT_CAPACITY", 10),
        RefillTokens:   l.int("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: l.dur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
        TTL:            l.dur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    l.str("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
        Prefix:         l.str("RATE_LIMIT_PREFIX", "rl"),
    }
    if rl.Capacity < 1 {
        l.fail("RATE_LIMIT_CAPACITY must be positive, got %d", rl.Capacity)
    }
    if rl.RefillTokens < 1 {
        l.fail("RATE_LIMIT_REFILL_TOKENS must be positive, got %d", rl.RefillTokens)
    }
    if rl.RefillInterval <= 0 {
        l.fail("RATE_LIMIT_REFILL_INTERVAL must be positive, got %s", rl.RefillInterval)
    }
    if !rateKeyStrategies[rl.KeyStrategy] {
        l.fail("RATE_LIMIT_KEY_STRATEGY must be ip, ip_user or ip_route, got %q", rl.KeyStrategy)
    }
    // the bucket must outlive a full refill
    if minTTL := 5 * rl.RefillInterval; rl.TTL < minTTL {
        rl.TTL = minTTL
    }
    return rl
}
