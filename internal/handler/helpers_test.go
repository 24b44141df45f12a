package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/storefront/internal/utils"
)

func newTestCodec(t *testing.T) *utils.TokenCodec {
	t.Helper()
	c, err := utils.NewTokenCodec("handler-test-secret", time.Hour)
	require.NoError(t, err)
	return c
}

func issueTestToken(t *testing.T, c *utils.TokenCodec, userID, role string) string {
	t.Helper()
	tok, err := c.Issue(utils.SessionClaims{UserID: userID, Email: userID + "@example.com", Role: role}, 0)
	require.NoError(t, err)
	return tok.Value
}
