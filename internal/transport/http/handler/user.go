package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-api/internal/domain"
	"estate-api/internal/service"
	"estate-api/internal/transport/http/ez"
)

type Users struct {
	Users    *service.UserService
	Listings *service.ListingService
}

func (Users) Priority() int { return 20 }

func (h Users) MountAPI(_, gated ez.EZ) {
	ez.RegisterAction(gated, ez.Action[struct{}, []*domain.Listing]{
		Method: http.MethodGet,
		Path:   "/user/listings/:id",
		Binder: ez.BindNone,
		Policy: ez.PolicyOwner,
		Handler: func(c *gin.Context, acc domain.Access, _ *struct{}) ([]*domain.Listing, error) {
			id := c.Param("id")
			if !acc.Permits(id) {
				return nil, ez.Forbidden("you can only view your own listings")
			}
			f := domain.Filter{OwnerID: id, Limit: domain.MaxLimit}
			return domain.Collect(h.Listings.ReadMany(c.Request.Context(), f))
		},
	})

	ez.RegisterAction(gated, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/user/:id",
		Binder: ez.BindNone,
		Policy: ez.PolicyGated,
		Handler: func(c *gin.Context, _ domain.Access, _ *struct{}) (*domain.User, error) {
			return h.Users.Get(c.Request.Context(), c.Param("id"))
		},
	})
}
