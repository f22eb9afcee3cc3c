package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"estate-api/internal/domain"
	"estate-api/internal/draft"
	"estate-api/internal/service"
	"estate-api/internal/transport/http/ez"
	mdw "estate-api/internal/transport/http/middleware"
)

// Listings mounts the listing routes and the admin listing routes.
type Listings struct {
	Svc   *service.ListingService
	Users *service.UserService
}

func (Listings) Priority() int { return 10 }

type listQuery struct {
	SearchTerm string `form:"searchTerm"`
	Type       string `form:"type"`
	Offer      string `form:"offer"`
	Parking    string `form:"parking"`
	Furnished  string `form:"furnished"`
	StartIndex int    `form:"startIndex"`
	Limit      int    `form:"limit"`
	Sort       string `form:"sort"`
	Order      string `form:"order"`
}

// filter turns query parameters into a Filter. Flags restrict only when
// they are literally "true".
func (q listQuery) filter(defaultLimit int) (domain.Filter, error) {
	typ := domain.ListingType(strings.ToLower(q.Type))
	if typ != "" && typ != "all" && !typ.Valid() {
		return domain.Filter{}, ez.BadRequest("type must be rent, sale or all")
	}
	if q.Limit == 0 {
		q.Limit = defaultLimit
	}
	return domain.Filter{
		SearchTerm: q.SearchTerm,
		Type:       typ,
		Offer:      q.Offer == "true",
		Parking:    q.Parking == "true",
		Furnished:  q.Furnished == "true",
		Offset:     q.StartIndex,
		Limit:      q.Limit,
		Sort:       domain.SortKey(q.Sort),
		Asc:        strings.EqualFold(q.Order, "asc"),
	}, nil
}

type idOut struct {
	ID string `json:"id"`
}

func (h Listings) MountAPI(public, gated ez.EZ) {
	ez.RegisterAction(gated, ez.Action[draft.Draft, *domain.Listing]{
		Method: http.MethodPost,
		Path:   "/listing/create",
		Binder: ez.BindJSON,
		Policy: ez.PolicyOwner,
		Handler: func(c *gin.Context, acc domain.Access, in *draft.Draft) (*domain.Listing, error) {
			p, _ := mdw.PrincipalFrom(c)
			if !p.Synthetic {
				if _, err := h.Users.Get(c.Request.Context(), acc.RequesterID); err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						return nil, ez.NotFound("owner does not exist")
					}
					return nil, err
				}
			}
			return h.Svc.Create(c.Request.Context(), *in, acc.RequesterID)
		},
	})

	ez.RegisterAction(gated, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/listing/delete/:id",
		Binder: ez.BindNone,
		Policy: ez.PolicyOwner,
		Handler: func(c *gin.Context, acc domain.Access, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			return idOut{ID: id}, h.Svc.Delete(c.Request.Context(), id, acc)
		},
	})

	ez.RegisterAction(gated, ez.Action[draft.Patch, *domain.Listing]{
		Method: http.MethodPost,
		Path:   "/listing/update/:id",
		Binder: ez.BindJSON,
		Policy: ez.PolicyOwner,
		Handler: func(c *gin.Context, acc domain.Access, in *draft.Patch) (*domain.Listing, error) {
			return h.Svc.Update(c.Request.Context(), c.Param("id"), *in, acc)
		},
	})

	ez.RegisterAction(public, ez.Action[struct{}, *domain.Listing]{
		Method: http.MethodGet,
		Path:   "/listing/get/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ domain.Access, _ *struct{}) (*domain.Listing, error) {
			return h.Svc.ReadOne(c.Request.Context(), c.Param("id"))
		},
	})

	ez.RegisterAction(public, ez.Action[listQuery, []*domain.Listing]{
		Method:  http.MethodGet,
		Path:    "/listing/get",
		Binder:  ez.BindQuery,
		Handler: h.list(domain.DefaultLimit),
	})
}

func (h Listings) MountAdmin(admin ez.EZ) {
	ez.RegisterAction(admin, ez.Action[listQuery, []*domain.Listing]{
		Method:  http.MethodGet,
		Path:    "/listings",
		Binder:  ez.BindQuery,
		Policy:  ez.PolicyAdmin,
		Handler: h.list(domain.DefaultAdminLimit),
	})

	ez.RegisterAction(admin, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/listings/:id",
		Binder: ez.BindNone,
		Policy: ez.PolicyAdmin,
		Handler: func(c *gin.Context, acc domain.Access, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			return idOut{ID: id}, h.Svc.Delete(c.Request.Context(), id, acc)
		},
	})
}

func (h Listings) list(defaultLimit int) func(*gin.Context, domain.Access, *listQuery) ([]*domain.Listing, error) {
	return func(c *gin.Context, _ domain.Access, in *listQuery) ([]*domain.Listing, error) {
		f, err := in.filter(defaultLimit)
		if err != nil {
			return nil, err
		}
		return domain.Collect(h.Svc.ReadMany(c.Request.Context(), f))
	}
}
