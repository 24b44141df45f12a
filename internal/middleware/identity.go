package middleware

// identity.go holds the authenticated identity that the session gate puts
// into the Echo context, plus helpers shared across middleware files.

import (
    "github.com/labstack/echo/v4"
)

const identityKey = "identity"

// Identity is the caller resolved from a verified session token.
type Identity struct {
    UserID string
    Email  string
    Role   string
}

func setIdentity(c echo.Context, id Identity) {
    c.Set(identityKey, id)
}

// CurrentIdentity returns the identity stored by RequireSession.
func CurrentIdentity(c echo.Context) (Identity, bool) {
    id, ok := c.Get(identityKey).(Identity)
    return id, ok
}

// userID returns the authenticated user id or "anon".
func userID(c echo.Context) string {
    if id, ok := CurrentIdentity(c); ok && id.UserID != "" {
        return id.UserID
    }
    return "anon"
}
