package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "estate-api/internal/transport/http/response"
)

// ConcurrencyLimit caps in-flight requests so the store is not flooded.
// A request that gives up waiting gets 503.
func ConcurrencyLimit(n int64) gin.HandlerFunc {
	if n <= 0 {
		return passThrough
	}
	sem := semaphore.NewWeighted(n)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, resp.Error(resp.CodeUnavailable, "server busy"))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}

func passThrough(c *gin.Context) { c.Next() }
