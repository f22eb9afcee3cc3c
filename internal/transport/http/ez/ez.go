// Package ez registers typed actions on gin groups: bind the input, run the
// handler under the route's access policy, write the JSON envelope.
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"estate-api/internal/domain"
	mdw "estate-api/internal/transport/http/middleware"
	resp "estate-api/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // handler reads c.Param / the form itself
)

// Policy is the access rule an action runs under.
type Policy int

const (
	// PolicyPublic needs no principal.
	PolicyPublic Policy = iota
	// PolicyGated needs a bound principal.
	PolicyGated
	// PolicyOwner needs a bound principal; the handler receives an Access
	// that only permits records the principal owns.
	PolicyOwner
	// PolicyAdmin needs an admin principal; the Access skips the owner check.
	PolicyAdmin
)

type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Policy  Policy
	Handler func(c *gin.Context, acc domain.Access, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		acc, err := access(c, a.Policy)
		if err != nil {
			e.Fail(c, err)
			return
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			_ = c.Error(bindErr)
			e.Fail(c, BadRequest(bindErr.Error()))
			return
		}

		out, err := a.Handler(c, acc, &in)
		if err != nil {
			e.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

func access(c *gin.Context, p Policy) (domain.Access, error) {
	if p == PolicyPublic {
		return domain.Access{}, nil
	}
	pr, ok := mdw.PrincipalFrom(c)
	if !ok {
		return domain.Access{}, domain.ErrUnauthorized
	}
	if p == PolicyAdmin {
		if !pr.IsAdmin() {
			return domain.Access{}, domain.ErrForbidden
		}
		return domain.AdminAccess(), nil
	}
	return domain.OwnerAccess(pr.ID), nil
}

// Fail writes err as a failure envelope with its HTTP status. Unclassified
// errors become a bare 500 and are logged.
func (e EZ) Fail(c *gin.Context, err error) {
	code, msg := Classify(err)
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
		e.log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(code, resp.Error(code, msg))
}

// Classify maps an error to a status code and the message clients see.
func Classify(err error) (int, string) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= http.StatusInternalServerError {
			return ae.Code, ae.Msg
		}
		return ae.Code, ae.Error()
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ""
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ""
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ""
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	}
	return http.StatusInternalServerError, ""
}
