package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const KeyRequestID = "X-Request-ID"

// RequestID echoes the caller's request id, or mints one. Ids longer than
// 64 bytes are replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}
		c.Header(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}
