package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/diegocaceres21/saae-discount-api/internal/service"
)

// Metrics observes every request's method, route and latency. Scrapes of the
// exposition endpoint itself are skipped so they don't dominate the counters.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}
