package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pnf-horario-api/internal/service"
)

// unmatchedRoute labels requests that hit no route so that scanners do not
// blow up the path label cardinality.
const unmatchedRoute = "unmatched"

// Metrics records the duration and status of every request under its
// route template.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
