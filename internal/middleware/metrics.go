package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/cleanwave-api/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided
// service. The scrape endpoint itself is not instrumented, and requests that
// match no route are collapsed into a single label to keep path cardinality
// bounded.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		switch path {
		case "/metrics":
			return
		case "":
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}
