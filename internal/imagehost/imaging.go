package imagehost

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"estate-api/internal/domain"
)

const (
	MaxDimension = 1600
	JPEGQuality  = 85
	// MaxPixels caps the decoded size of an upload.
	MaxPixels = 40_000_000
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Process sniffs r, refuses anything but JPEG or PNG up to maxBytes, and
// returns the image re-encoded as JPEG no larger than MaxDimension.
func Process(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.Invalid(fmt.Sprintf("image must be less than %d MB", maxBytes>>20))
	}
	if mime := http.DetectContentType(data); !allowedMIME[mime] {
		return nil, domain.Invalid("only jpeg and png images are accepted")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, domain.Invalid("image cannot be decoded")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, domain.Invalid(fmt.Sprintf("image must be at most %d megapixels", MaxPixels/1_000_000))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.Invalid("image cannot be decoded")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, MaxDimension), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales img down so neither side exceeds maxDim, keeping the aspect
// ratio.
func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	nw, nh := maxDim, h*maxDim/w
	if h > w {
		nw, nh = w*maxDim/h, maxDim
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(nw, 1), max(nh, 1)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
