package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequireAPIKey(t *testing.T) {
	tests := map[string]struct {
		configured string
		header     string
		want       int
	}{
		"match":           {"k-123", "Bearer k-123", http.StatusOK},
		"wrong key":       {"k-123", "Bearer k-999", http.StatusUnauthorized},
		"missing header":  {"k-123", "", http.StatusUnauthorized},
		"no bearer":       {"k-123", "k-123", http.StatusUnauthorized},
		"unconfigured":    {"", "Bearer ", http.StatusUnauthorized},
		"prefix of key":   {"k-123", "Bearer k-12", http.StatusUnauthorized},
		"lowercase token": {"k-123", "bearer k-123", http.StatusUnauthorized},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireAPIKey(tt.configured))

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			assert.Equal(t, tt.want, serve(e, req).Code)
		})
	}
}
