package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "estate-api/internal/transport/http/response"
)

// MaxBodyBytes bounds the request body. Handlers see the limit as a read
// error; if none of them answered, the request gets 400.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	if n <= 0 {
		return passThrough
	}
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if len(c.Errors) > 0 && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "request body too large"))
		}
	}
}
