package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "estate-api/internal/transport/http/response"
)

// NewAdminEngine serves only the admin group, health and metrics. It is
// meant for a port that is not exposed publicly.
func NewAdminEngine(o Options, reg *Registry) *gin.Engine {
	r := base(o)
	mountAdmin(r, o, reg)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(resp.CodeNotFound, ""))
	})
	return r
}
