package utils // package utils provides the password hasher and the session token codec

import (
	"errors" // sentinel errors for codec misuse
	"time"   // token lifetimes

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
	"github.com/google/uuid"       // unique token identifiers
	"github.com/samber/oops"       // coded errors for signing failures
)

// CodeSigning marks a failure to sign a session token.
const CodeSigning = "AUTH_SIGNING_FAILED"

// tokenIssuer is written into every token and required on verification.
const tokenIssuer = "storefront"

// ErrMissingSecret is returned when a codec is built without a signing
// secret.  There is no fallback secret.
var ErrMissingSecret = errors.New("session token signing secret is not configured")

// SessionClaims are the identity attributes carried by a session token.
// IssuedAt and ExpiresAt are filled in by the codec.
type SessionClaims struct {
	UserID    string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionToken is a signed token together with its expiry.
type SessionToken struct {
	Value     string    // the serialized JWT string
	ExpiresAt time.Time // the UTC expiration time
}

// tokenClaims is the JWT payload.
type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 session tokens with a process-wide
// secret.  It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec builds a codec.  An empty secret is an error so a
// misconfigured process refuses to start.  ttl is the default lifetime
// used when Issue is called without one.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		return nil, errors.New("session token ttl must be positive")
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the default token lifetime.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs claims valid for ttl (the codec default when ttl <= 0).
func (c *TokenCodec) Issue(claims SessionClaims, ttl time.Duration) (SessionToken, error) {
	if c == nil || len(c.secret) == 0 {
		return SessionToken{}, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return SessionToken{}, oops.Code(CodeSigning).Wrap(err)
	}
	return SessionToken{Value: signed, ExpiresAt: exp}, nil
}

// Verify checks the signature, issuer and expiry of token and returns its
// claims.  Every failure yields (SessionClaims{}, false); callers cannot
// tell a forged token from an expired or malformed one.
func (c *TokenCodec) Verify(token string) (SessionClaims, bool) {
	if c == nil || len(c.secret) == 0 || token == "" {
		return SessionClaims{}, false
	}
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc,
		func(t *jwt.Token) (interface{}, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid || tc.UserID == "" || tc.UserID != tc.Subject {
		return SessionClaims{}, false
	}

	out := SessionClaims{UserID: tc.UserID, Email: tc.Email, Role: tc.Role}
	if tc.IssuedAt != nil {
		out.IssuedAt = tc.IssuedAt.UTC()
	}
	out.ExpiresAt = tc.ExpiresAt.UTC()
	return out, true
}
