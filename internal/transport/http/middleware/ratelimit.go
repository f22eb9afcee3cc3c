package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "estate-api/internal/transport/http/response"
)

func tooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, resp.Error(resp.CodeTooMany, ""))
}

// RateLimit is one token bucket shared by every client.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return passThrough
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !lim.Allow() {
			tooMany(c)
			return
		}
		c.Next()
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimitPerIP keeps a token bucket per client IP. Buckets idle for
// longer than idle are dropped.
func RateLimitPerIP(rps float64, burst int, idle time.Duration) gin.HandlerFunc {
	if rps <= 0 {
		return passThrough
	}
	var (
		mu      sync.Mutex
		buckets = map[string]*ipBucket{}
		swept   = time.Now()
	)
	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		if idle > 0 && now.Sub(swept) > idle {
			for k, b := range buckets {
				if now.Sub(b.seen) > idle {
					delete(buckets, k)
				}
			}
			swept = now
		}
		b, ok := buckets[ip]
		if !ok {
			b = &ipBucket{lim: rate.NewLimiter(rate.Limit(rps), burst)}
			buckets[ip] = b
		}
		b.seen = now
		allowed := b.lim.Allow()
		mu.Unlock()

		if !allowed {
			tooMany(c)
			return
		}
		c.Next()
	}
}
