package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecoleplus/mobile-api/internal/service"
)

// Metrics times every request and feeds the Prometheus collectors. The
// route template is used as the path label so IDs do not explode the
// cardinality.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		started := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(started))
	}
}
