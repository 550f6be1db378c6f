// Package wms is a narrow WMS 1.3.0 client: GetCapabilities for time
// dimension discovery and GetMap for radar tiles. It is not a general WMS
// client; only the behavior the radar pipeline needs is implemented.
package wms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/skycastlabs/radarloop/internal/domain"
)

// maxErrorBody bounds how much of an upstream error response is captured
// into the returned error.
const maxErrorBody = 512

// Client issues WMS requests against a single base endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a WMS client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// GetCapabilities fetches the capabilities document for a layer.
func (c *Client) GetCapabilities(ctx context.Context, layer string) ([]byte, error) {
	params := url.Values{
		"SERVICE": {"WMS"},
		"VERSION": {"1.3.0"},
		"REQUEST": {"GetCapabilities"},
		"LAYERS":  {layer},
	}
	return c.doRequest(ctx, params, "capabilities")
}

// GetMap fetches one rendered raster for the given frame request.
func (c *Client) GetMap(ctx context.Context, req domain.FrameRequest) ([]byte, error) {
	params := url.Values{
		"SERVICE": {"WMS"},
		"VERSION": {"1.3.0"},
		"REQUEST": {"GetMap"},
		"LAYERS":  {req.Layer},
		"CRS":     {"EPSG:4326"},
		"BBOX":    {req.BBox.WMSBBox()},
		"WIDTH":   {fmt.Sprintf("%d", req.Width)},
		"HEIGHT":  {fmt.Sprintf("%d", req.Height)},
		"FORMAT":  {req.Format},
	}
	if req.Transparent {
		params.Set("TRANSPARENT", "TRUE")
	}
	if !req.Time.IsZero() {
		params.Set("TIME", domain.FormatInstant(req.Time))
	}
	return c.doRequest(ctx, params, "map")
}

func (c *Client) doRequest(ctx context.Context, params url.Values, kind string) ([]byte, error) {
	fullURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wms %s request: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("wms %s error: status %d: %s", kind, resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read wms %s response: %w", kind, err)
	}
	return data, nil
}
