package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-api/internal/domain"
	"estate-api/internal/service"
	"estate-api/internal/transport/http/ez"
)

// Cookie describes the access token cookie set on sign-in.
type Cookie struct {
	Name   string
	Secure bool
	MaxAge int // seconds
}

type Auth struct {
	Users  *service.UserService
	Cookie Cookie
}

func (Auth) Priority() int { return 0 }

type signInIn struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type messageOut struct {
	Message string `json:"message"`
}

func (h Auth) MountAPI(public, _ ez.EZ) {
	ez.RegisterAction(public, ez.Action[service.SignUpInput, *domain.User]{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Access, in *service.SignUpInput) (*domain.User, error) {
			return h.Users.SignUp(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(public, ez.Action[signInIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "/auth/signin",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Access, in *signInIn) (*domain.User, error) {
			u, token, err := h.Users.SignIn(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return nil, err
			}
			h.setCookie(c, token, h.Cookie.MaxAge)
			return u, nil
		},
	})

	ez.RegisterAction(public, ez.Action[struct{}, messageOut]{
		Method: http.MethodGet,
		Path:   "/auth/signout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ domain.Access, _ *struct{}) (messageOut, error) {
			h.setCookie(c, "", -1)
			return messageOut{Message: "User has been logged out!"}, nil
		},
	})
}

func (h Auth) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.Name, value, maxAge, "/", "", h.Cookie.Secure, true)
}
