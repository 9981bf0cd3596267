// Package revalidate triggers regeneration of cached site pages.
package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SouravInsights/gardend/internal/telemetry"
)

// Client calls the site's revalidation endpoint with a shared secret.
type Client struct {
	httpClient *http.Client
	url        string
	secret     string
	path       string
}

// New constructs a Client. url is the revalidation endpoint, path the cached
// page path to invalidate.
func New(url, secret, path string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		secret:     secret,
		path:       path,
	}
}

type triggerRequest struct {
	Secret string `json:"secret"`
	Path   string `json:"path"`
}

// Trigger invalidates the configured page path. A non-2xx response is a hard
// failure; the change detector surfaces it rather than swallowing it.
func (c *Client) Trigger(ctx context.Context) error {
	payload, err := json.Marshal(triggerRequest{Secret: c.secret, Path: c.path})
	if err != nil {
		return fmt.Errorf("marshal revalidate payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build revalidate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.ObserveRevalidation("error")
		return fmt.Errorf("call revalidate endpoint: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		telemetry.ObserveRevalidation("rejected")
		return fmt.Errorf("revalidate status %d: %s", resp.StatusCode, string(body))
	}
	telemetry.ObserveRevalidation("ok")
	return nil
}
