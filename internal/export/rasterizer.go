package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
)

// Rasterizer renders HTML into a single tall raster image of the full
// table. This is the only suspension point in the export path besides
// the queue itself.
type Rasterizer interface {
	Screenshot(ctx context.Context, html string) (image.Image, error)
}

// ChromiumRasterizer screenshots HTML through a Gotenberg-compatible
// Chromium service.
type ChromiumRasterizer struct {
	baseURL    string
	httpClient *http.Client
}

// NewChromiumRasterizer constructs a rasterizer client.
func NewChromiumRasterizer(baseURL string) *ChromiumRasterizer {
	return &ChromiumRasterizer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Ping checks if the remote service is available.
func (c *ChromiumRasterizer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("rasterizer returned status %d", resp.StatusCode)
	}
	return nil
}

// Screenshot captures the rendered HTML as one full-height PNG.
func (c *ChromiumRasterizer) Screenshot(ctx context.Context, html string) (image.Image, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, bytes.NewBufferString(html)); err != nil {
		return nil, err
	}
	if err := writer.WriteField("format", "png"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/forms/chromium/screenshot/html", c.baseURL), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("screenshot failed with status %d", resp.StatusCode)
	}
	img, err := imaging.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}
