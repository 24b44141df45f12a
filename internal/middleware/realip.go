package middleware

import (
	"net"

	"github.com/labstack/echo/v4"
)

// ClientIPExtractor returns the extractor behind c.RealIP().  Without
// trusted proxies the peer address is the client and X-Forwarded-For is
// ignored.  Otherwise X-Forwarded-For is walked from the right, skipping
// only the listed ranges.
func ClientIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
