package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "estate-api/internal/transport/http/response"
)

// NewRouter returns a bare engine with panic recovery and CORS installed.
// A recovered panic is logged with its stack and answered with the 500
// envelope.
func NewRouter(l *zap.Logger, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.CustomRecoveryWithZap(l, true, func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Error(http.StatusInternalServerError, ""))
	}))
	r.Use(corsMiddleware(origins))
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20,
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }
