package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"estate-api/internal/core/auth"
	"estate-api/internal/domain"
	resp "estate-api/internal/transport/http/response"
)

const KeyPrincipal = "principal"

// Gate rejects requests without a credential the gate accepts and binds the
// resolved principal to the context. The credential is read from the named
// cookie, then from a Bearer Authorization header.
func Gate(g *auth.Gate, cookie string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := g.Verify(credential(c, cookie))
		if err != nil {
			code := http.StatusForbidden
			if errors.Is(err, domain.ErrUnauthorized) {
				code = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(code, resp.Error(code, ""))
			return
		}
		c.Set(KeyPrincipal, p)
		c.Next()
	}
}

func credential(c *gin.Context, cookie string) string {
	if v, err := c.Cookie(cookie); err == nil && v != "" {
		return v
	}
	ah := c.GetHeader("Authorization")
	if len(ah) > 7 && strings.EqualFold(ah[:7], "Bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	return ""
}

// PrincipalFrom returns the principal bound by Gate, if any.
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(KeyPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
