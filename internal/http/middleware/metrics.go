package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qrcodes-backend/internal/observability"
)

// Metrics records per-route request counts and latency. Scrapes of the
// exposition endpoint itself are not recorded.
func Metrics(m *observability.Metrics, skip ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	return func(c *gin.Context) {
		if skipped[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		// FullPath keeps ids out of label values
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
