// Package books fetches the reading tracker and the highlights-source
// catalog. Both upstreams degrade to empty lists on failure, mirroring the
// chat-platform fetcher.
package books

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SouravInsights/gardend/internal/garden"
	"github.com/SouravInsights/gardend/internal/telemetry"
)

// Config controls the book clients.
type Config struct {
	TrackerURL      string
	TrackerToken    string
	HighlightsURL   string
	HighlightsToken string
	Timeout         time.Duration
}

// Client reads both book upstreams.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *zap.Logger
}

// New constructs a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.TrackerURL = strings.TrimSuffix(cfg.TrackerURL, "/")
	cfg.HighlightsURL = strings.TrimSuffix(cfg.HighlightsURL, "/")
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// TrackedBooks returns the reading tracker's entries, or an empty list on
// failure.
func (c *Client) TrackedBooks(ctx context.Context) []garden.TrackedBook {
	var books []garden.TrackedBook
	if err := c.get(ctx, c.cfg.TrackerURL+"/books", c.cfg.TrackerToken, &books); err != nil {
		telemetry.ObserveUpstreamError("book_tracker")
		c.logger.Error("fetch tracked books failed", zap.Error(err))
		return []garden.TrackedBook{}
	}
	return books
}

// Catalog returns the highlights source's book catalog, or an empty list on
// failure.
func (c *Client) Catalog(ctx context.Context) []garden.CatalogBook {
	var books []garden.CatalogBook
	if err := c.get(ctx, c.cfg.HighlightsURL+"/books", c.cfg.HighlightsToken, &books); err != nil {
		telemetry.ObserveUpstreamError("highlights")
		c.logger.Error("fetch highlights catalog failed", zap.Error(err))
		return []garden.CatalogBook{}
	}
	return books
}

func (c *Client) get(ctx context.Context, url, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
