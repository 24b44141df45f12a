package config // package config loads application configuration from environment variables

import (
	"errors"  // errors joins every configuration problem into one startup error
	"fmt"     // fmt formats configuration error messages
	"net"     // net parses trusted proxy ranges
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings normalises enum-like values
	"time"    // time expresses the session lifetime

	"github.com/joho/godotenv" // godotenv seeds the environment from an optional .env file
)

// Supported password hashing algorithms.
const (
	HashBcrypt   = "bcrypt"
	HashArgon2id = "argon2id"
)

// MinBcryptCost is the lowest work factor accepted from configuration.
const MinBcryptCost = 10

// minProdSecretLen is the shortest signing secret accepted in production.
const minProdSecretLen = 32

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  A Config is built once by Load and then passed
// by value or pointer into constructors; nothing reads the environment
// after startup.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	JWTSecret      string        // secret used to sign session tokens
	SessionTTL     time.Duration // lifetime of session tokens and the session cookie
	BcryptCost     int           // bcrypt cost for password hashing
	HashAlgorithm  string        // bcrypt or argon2id for new digests
	PasswordMinLen int           // minimum accepted password length at registration
	IntegrationKey string        // bearer shared secret for integration endpoints
	MigrateOnStart bool          // apply embedded migrations during startup
	LogLevel       string        // zerolog level name
	RabbitURL      string        // broker URL; empty disables domain events
	TrustedProxies []*net.IPNet  // proxies whose X-Forwarded-For is believed; empty trusts none
	RateLimit      RateLimitConfig
	Cache          CacheConfig
	Redis          RedisConfig
}

// IsProduction reports whether the process runs in a production
// environment.  It controls the Secure attribute of the session cookie.
func (c Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// Load reads configuration values from the environment and returns a
// Config.  A .env file in the working directory is loaded first when
// present.  Every missing or malformed value is collected and returned as
// a single error so the caller can refuse to start.
func Load() (Config, error) {
	_ = godotenv.Load() // missing .env is normal outside local development
	return load(os.LookupEnv)
}

// loader accumulates problems while reading variables.
type loader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func load(lookup func(string) (string, bool)) (Config, error) {
	l := &loader{lookup: lookup}
	cfg := Config{
		Env:            l.must("APP_ENV"),
		Port:           l.must("APP_PORT"),
		DBUser:         l.must("DB_USER"),
		DBPass:         l.str("DB_PASS", ""),
		DBHost:         l.must("DB_HOST"),
		DBPort:         l.must("DB_PORT"),
		DBName:         l.must("DB_NAME"),
		JWTSecret:      l.must("JWT_SECRET"),
		SessionTTL:     time.Duration(l.int("SESSION_TTL_DAYS", 30)) * 24 * time.Hour,
		BcryptCost:     l.int("BCRYPT_COST", MinBcryptCost),
		HashAlgorithm:  strings.ToLower(l.str("HASH_ALGORITHM", HashBcrypt)),
		PasswordMinLen: l.int("PASSWORD_MIN_LEN", 6),
		IntegrationKey: l.str("INTEGRATION_API_KEY", ""),
		MigrateOnStart: l.bool("MIGRATE_ON_START", true),
		LogLevel:       l.str("LOG_LEVEL", "info"),
		RabbitURL:      l.str("RABBITMQ_URL", l.str("AMQP_URL", "")),
		TrustedProxies: l.cidrs("TRUSTED_PROXIES"),
		RateLimit:      l.rateLimit(),
		Cache:          l.cache(),
		Redis:          l.redis(),
	}

	if cfg.BcryptCost < MinBcryptCost {
		l.fail("BCRYPT_COST must be at least %d, got %d", MinBcryptCost, cfg.BcryptCost)
	}
	if cfg.HashAlgorithm != HashBcrypt && cfg.HashAlgorithm != HashArgon2id {
		l.fail("HASH_ALGORITHM must be %q or %q, got %q", HashBcrypt, HashArgon2id, cfg.HashAlgorithm)
	}
	if cfg.PasswordMinLen < 1 {
		l.fail("PASSWORD_MIN_LEN must be positive, got %d", cfg.PasswordMinLen)
	}
	if cfg.SessionTTL <= 0 {
		l.fail("SESSION_TTL_DAYS must be positive")
	}
	if cfg.IsProduction() && cfg.JWTSecret != "" && len(cfg.JWTSecret) < minProdSecretLen {
		l.fail("JWT_SECRET must be at least %d bytes in production", minProdSecretLen)
	}

	if len(l.errs) > 0 {
		return Config{}, errors.Join(l.errs...)
	}
	return cfg, nil
}

func (l *loader) fail(format string, args ...any) {
	l.errs = append(l.errs, fmt.Errorf(format, args...))
}

// must retrieves the value of a required environment variable.  Unset or
// empty values are recorded as errors.
func (l *loader) must(key string) string {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		l.fail("missing required env var: %s", key)
	}
	return v
}

func (l *loader) str(key, def string) string {
	if v, ok := l.lookup(key); ok && v != "" {
		return v
	}
	return def
}

// int is like str but converts the value; a malformed number is an error
// rather than a silent fallback to the default.
func (l *loader) int(key string, def int) int {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.fail("invalid int for %s: %q", key, v)
		return def
	}
	return n
}

func (l *loader) bool(key string, def bool) bool {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.fail("invalid bool for %s: %q", key, v)
		return def
	}
	return b
}

func (l *loader) dur(key string, def time.Duration) time.Duration {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.fail("invalid duration for %s: %q", key, v)
		return def
	}
	return d
}

// list splits a comma separated value, dropping empty items.
func (l *loader) list(key, def string) []string {
	var out []string
	for _, p := range strings.Split(l.str(key, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cidrs parses a list of CIDR ranges; a bare IP is taken as a single host.
func (l *loader) cidrs(key string) []*net.IPNet {
	var out []*net.IPNet
	for _, p := range l.list(key, "") {
		cidr := p
		if !strings.Contains(p, "/") {
			if ip := net.ParseIP(p); ip != nil && ip.To4() != nil {
				cidr += "/32"
			} else {
				cidr += "/128"
			}
		}
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			l.fail("invalid CIDR in %s: %q", key, p)
			continue
		}
		out = append(out, n)
	}
	return out
}
