package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Cloudinary performs unsigned uploads against a preset.
type Cloudinary struct {
	URL    string // https://api.cloudinary.com/v1_1/<cloud>/image/upload
	Preset string
	Client *http.Client
}

func NewCloudinary(url, preset string) *Cloudinary {
	return &Cloudinary{URL: url, Preset: preset, Client: &http.Client{Timeout: 30 * time.Second}}
}

func (c *Cloudinary) Upload(ctx context.Context, name string, data []byte, _ string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("upload_preset", c.Preset); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	res, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", fmt.Errorf("cloudinary: status %d: %s", res.StatusCode, bytes.TrimSpace(msg))
	}
	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("cloudinary: decode: %w", err)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("cloudinary: response has no secure_url")
	}
	return out.SecureURL, nil
}
