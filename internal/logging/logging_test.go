package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &m))
	return m
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", &buf)
	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Msg("shown")
	assert.Equal(t, "shown", lastLine(t, &buf)["message"])

	buf.Reset()
	fallback := New("nonsense", &buf)
	fallback.Info().Msg("fallback")
	assert.Equal(t, "info", lastLine(t, &buf)["level"])
}

func TestError_OopsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", &buf)

	err := oops.Code("AUTH_HASHING_FAILED").With("algorithm", "bcrypt").Errorf("boom")
	Error(logger, "register failed", err)

	line := lastLine(t, &buf)
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "register failed", line["message"])
	assert.Equal(t, "AUTH_HASHING_FAILED", line["code"])
	assert.Equal(t, "bcrypt", line["algorithm"])
}

func TestError_PlainError(t *testing.T) {
	var buf bytes.Buffer
	Error(New("info", &buf), "lookup failed", errors.New("db down"))

	line := lastLine(t, &buf)
	assert.Equal(t, "db down", line["error"])
	assert.NotContains(t, line, "code")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(New("info", &buf)))
	e.GET("/api/products/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/products/9", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	line := lastLine(t, &buf)
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "/api/products/:id", line["path"])
	assert.EqualValues(t, http.StatusNotFound, line["status"])
	assert.Equal(t, "rid-1", line["request_id"])
}
