package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Health reports that the process is up.  It touches no dependency.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// UserCounter is satisfied by *repository.UserRepo.
type UserCounter interface {
    Count(ctx context.Context) (int64, error)
}

// Ready answers 503 while the database is unreachable or the users table
// cannot be read, e.g. before migrations ran.
func Ready(db Pinger, users UserCounter) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := db.PingContext(ctx); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "check": "database"})
        }
        if _, err := users.Count(ctx); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "check": "schema"})
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
    }
}
