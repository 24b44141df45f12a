package middleware // middleware provides shared request processing for handlers

import (
    "errors"   // sentinel error for authorization failures
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// ErrForbidden is returned by Authorize when the identity lacks the role.
var ErrForbidden = errors.New("forbidden")

// Authorize reports whether id carries one of roles.
func Authorize(id Identity, roles ...string) error {
    for _, r := range roles {
        if id.Role == r {
            return nil
        }
    }
    return ErrForbidden
}

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  It must run after
// SessionGate.RequireSession; a request with no identity is answered with
// 401, one with the wrong role with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := CurrentIdentity(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
            }
            if err := Authorize(id, roles...); err != nil {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
