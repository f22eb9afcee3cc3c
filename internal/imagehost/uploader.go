// Package imagehost turns uploaded listing photos into hosted image URLs.
package imagehost

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"estate-api/internal/domain"
)

var ErrDisabled = errors.New("image hosting is not configured")

// Uploader stores one processed image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type disabled struct{}

func (disabled) Upload(context.Context, string, []byte, string) (string, error) {
	return "", ErrDisabled
}

// Disabled is the Uploader used when no provider is configured.
func Disabled() Uploader { return disabled{} }

type Host struct {
	up       Uploader
	maxBytes int64
	log      *zap.Logger
}

func NewHost(up Uploader, maxBytes int64, l *zap.Logger) *Host {
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Host{up: up, maxBytes: maxBytes, log: l}
}

// UploadAll processes and uploads files concurrently. URLs come back in the
// order the files were given. Any failure fails the whole batch.
func (h *Host) UploadAll(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if err := domain.ValidateImages(len(files)); err != nil {
		return nil, err
	}
	for _, fh := range files {
		if fh.Size > h.maxBytes {
			return nil, domain.Invalid(fmt.Sprintf("%s: image must be less than %d MB", fh.Filename, h.maxBytes>>20))
		}
	}

	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, fh := range files {
		g.Go(func() error {
			f, err := fh.Open()
			if err != nil {
				return domain.Invalid(fh.Filename + ": unreadable upload")
			}
			defer f.Close()
			data, err := Process(f, h.maxBytes)
			if err != nil {
				return err
			}
			url, err := h.up.Upload(gctx, fh.Filename, data, "image/jpeg")
			if err != nil {
				if errors.Is(err, ErrDisabled) {
					return err
				}
				return domain.Upstream("upload image", err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.log.Warn("image upload failed", zap.Int("files", len(files)), zap.Error(err))
		return nil, err
	}
	return urls, nil
}

// FromConfig picks the Uploader named by provider.
func FromConfig(ctx context.Context, provider string, cl *Cloudinary, so S3Options) (Uploader, error) {
	switch provider {
	case "cloudinary":
		return cl, nil
	case "s3":
		return NewS3(ctx, so)
	case "", "none":
		return Disabled(), nil
	}
	return nil, fmt.Errorf("unknown image provider %q", provider)
}
