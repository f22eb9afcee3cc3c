package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"estate-api/internal/domain"
	"estate-api/internal/imagehost"
	"estate-api/internal/transport/http/ez"
)

const uploadField = "images"

type Upload struct {
	Host *imagehost.Host
}

func (Upload) Priority() int { return 30 }

type uploadOut struct {
	URLs []string `json:"urls"`
}

func (h Upload) MountAPI(_, gated ez.EZ) {
	ez.RegisterAction(gated, ez.Action[struct{}, uploadOut]{
		Method: http.MethodPost,
		Path:   "/upload",
		Binder: ez.BindNone,
		Policy: ez.PolicyGated,
		Handler: func(c *gin.Context, _ domain.Access, _ *struct{}) (uploadOut, error) {
			form, err := c.MultipartForm()
			if err != nil {
				return uploadOut{}, ez.BadRequest("invalid multipart form")
			}
			var files []*multipart.FileHeader
			if form != nil {
				files = form.File[uploadField]
			}
			urls, err := h.Host.UploadAll(c.Request.Context(), files)
			if errors.Is(err, imagehost.ErrDisabled) {
				return uploadOut{}, ez.Unavailable(err.Error(), err)
			}
			if err != nil {
				return uploadOut{}, err
			}
			return uploadOut{URLs: urls}, nil
		},
	})
}
