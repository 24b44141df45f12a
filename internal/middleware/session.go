package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/utils"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "authToken"

// TokenVerifier resolves a session token to its claims.
type TokenVerifier interface {
	Verify(token string) (utils.SessionClaims, bool)
}

// SessionGate resolves the session cookie of a request to an Identity.
// There is no server-side session table: every request re-verifies its
// token, so the gate is safe for concurrent use.
type SessionGate struct {
	tokens TokenVerifier
}

func NewSessionGate(tokens TokenVerifier) *SessionGate {
	return &SessionGate{tokens: tokens}
}

// Authenticate returns the identity carried by the request's session
// cookie.  A missing cookie and an invalid or expired token both yield
// (Identity{}, false); neither is an error.
func (g *SessionGate) Authenticate(r *http.Request) (Identity, bool) {
	ck, err := r.Cookie(SessionCookieName)
	if err != nil || ck.Value == "" {
		return Identity{}, false
	}
	claims, ok := g.tokens.Verify(ck.Value)
	if !ok {
		return Identity{}, false
	}
	return Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, true
}

// RequireSession rejects requests without a valid session with 401 and
// stores the identity in the context for downstream handlers.
func (g *SessionGate) RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := g.Authenticate(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

// NewSessionCookie builds the httpOnly, SameSite=Lax cookie for token.
// secure should be true in production so the cookie only travels over TLS.
func NewSessionCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie returns a cookie that makes the client drop its
// session.  Copies of the token taken before logout stay valid until they
// expire.
func ClearSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
