package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"geocell/internal/metrics"
)

// Metrics records request counts and latencies per route template, so
// /v1/locations/:key is one series no matter how many keys are queried.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := float64(time.Since(start).Microseconds()) / 1000
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDurationMs.WithLabelValues(route, c.Request.Method).Observe(elapsed)
	}
}
