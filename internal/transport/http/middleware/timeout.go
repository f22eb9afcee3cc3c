package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	resp "estate-api/internal/transport/http/response"
)

// Timeout puts a deadline on the request context. Store calls observe it;
// if the handler wrote nothing by then the client gets 504.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return passThrough
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, resp.Error(resp.CodeTimeout, ""))
		}
	}
}
