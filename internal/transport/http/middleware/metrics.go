package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

type RequestObserver interface {
	ObserveRequest(path, method string, status int, d time.Duration)
}

// Metrics records every request under its route template; unmatched paths
// share one label so random URLs cannot blow up cardinality.
func Metrics(obs RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		obs.ObserveRequest(path, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
