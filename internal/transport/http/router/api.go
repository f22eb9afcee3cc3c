package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"estate-api/internal/core/auth"
	"estate-api/internal/core/config"
	"estate-api/internal/core/server"
	"estate-api/internal/transport/http/ez"
	mdw "estate-api/internal/transport/http/middleware"
	resp "estate-api/internal/transport/http/response"
)

type Options struct {
	Logger      *zap.Logger
	Gate        *auth.Gate
	CookieName  string
	CORSOrigins []string
	Limits      config.Limits
	// StaticDir, when set, holds a built single-page client served for every
	// non-API path.
	StaticDir string
}

func base(o Options) *gin.Engine {
	r := server.NewRouter(o.Logger, o.CORSOrigins)
	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(o.Limits.RPS, o.Limits.Burst, 10*time.Minute),
		mdw.ConcurrencyLimit(o.Limits.MaxConcurrent),
		mdw.MaxBodyBytes(o.Limits.MaxBodyMB<<20),
		mdw.Timeout(time.Duration(o.Limits.RequestTimeout)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(o.Logger),
	)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(gin.H{"ok": 1})) })
	r.GET("/metrics", gin.WrapH(mdw.MetricsHandler()))
	return r
}

func mountAdmin(r *gin.Engine, o Options, reg *Registry) {
	admin := r.Group("/api/admin", mdw.Gate(o.Gate, o.CookieName))
	reg.mountAdmin(ez.New(admin, o.Logger))
}

// NewAPIEngine serves the full public surface plus the admin group.
func NewAPIEngine(o Options, reg *Registry) *gin.Engine {
	r := base(o)

	api := r.Group("/api")
	gated := api.Group("", mdw.Gate(o.Gate, o.CookieName))
	reg.mountAPI(ez.New(api, o.Logger), ez.New(gated, o.Logger))
	mountAdmin(r, o, reg)

	r.NoRoute(notFound(o.StaticDir))
	return r
}

func notFound(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if staticDir == "" || strings.HasPrefix(p, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, ""))
			return
		}
		f := filepath.Join(staticDir, filepath.FromSlash(filepath.Clean("/"+p)))
		if st, err := os.Stat(f); err == nil && !st.IsDir() {
			c.File(f)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	}
}
