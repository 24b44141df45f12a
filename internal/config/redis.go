package config

// Redis backs the login rate limiter and the catalog response cache.  Both
// degrade to pass-through when no client is available, so a failed
// connection here is reported but never fatal.

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig is read from REDIS_ADDR (or REDIS_HOST + REDIS_PORT),
// REDIS_PASSWORD, REDIS_DB and REDIS_TLS.
type RedisConfig struct {
    Addr     string
    Password string
    DB       int
    TLS      bool
}

func (l *loader) redis() RedisConfig {
    rc := RedisConfig{
        Addr:     l.str("REDIS_ADDR", "localhost:6379"),
        Password: l.str("REDIS_PASSWORD", ""),
        DB:       l.int("REDIS_DB", 0),
        TLS:      l.bool("REDIS_TLS", false),
    }
    host, port := l.str("REDIS_HOST", ""), l.str("REDIS_PORT", "")
    if host != "" && port != "" {
        rc.Addr = host + ":" + port
    }
    if rc.DB < 0 {
        l.fail("REDIS_DB must not be negative, got %d", rc.DB)
    }
    return rc
}

// NewRedisClient connects to cfg and pings it.  It returns nil and the
// ping error when the server cannot be reached.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
    opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
    if cfg.TLS {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(opts)
    pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(pingCtx).Err(); err != nil {
        _ = client.Close()
        return nil, err
    }
    return client, nil
}
