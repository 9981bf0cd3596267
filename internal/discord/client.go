// Package discord fetches channels and messages from the chat platform's
// REST API. It is the only source of raw link material for the garden.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SouravInsights/gardend/internal/garden"
	"github.com/SouravInsights/gardend/internal/telemetry"
)

// Config controls the Discord client.
type Config struct {
	BaseURL        string
	Token          string
	GuildID        string
	ChannelNames   []string
	ChannelPrefix  string
	PageSize       int
	RequestsPerSec float64
	Timeout        time.Duration
}

// Client talks to the Discord REST API with a bot token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	guildID    string
	pageSize   int
	prefix     string
	allowed    map[string]struct{}
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New constructs a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 || cfg.PageSize > 100 {
		cfg.PageSize = 100
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	allowed := make(map[string]struct{}, len(cfg.ChannelNames))
	for _, name := range cfg.ChannelNames {
		allowed[name] = struct{}{}
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		guildID:    cfg.GuildID,
		pageSize:   cfg.PageSize,
		prefix:     cfg.ChannelPrefix,
		allowed:    allowed,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		logger:     logger,
	}
}

// ListChannels returns the guild's link-garden channels. Any failure is
// logged and collapses to an empty list so a content page renders without
// links rather than erroring.
func (c *Client) ListChannels(ctx context.Context) []garden.Channel {
	channels, err := c.Channels(ctx)
	if err != nil {
		telemetry.ObserveUpstreamError("discord")
		c.logger.Error("list channels failed", zap.Error(err))
		return []garden.Channel{}
	}
	return channels
}

// ListMessages returns recent link-bearing messages for a channel, newest
// first. Failures collapse to an empty list, same as ListChannels.
func (c *Client) ListMessages(ctx context.Context, channelID string) []garden.RawMessage {
	msgs, err := c.Messages(ctx, channelID)
	if err != nil {
		telemetry.ObserveUpstreamError("discord")
		c.logger.Error("list messages failed", zap.String("channel_id", channelID), zap.Error(err))
		return []garden.RawMessage{}
	}
	return msgs
}

// Channels is the error-propagating variant of ListChannels, used by the
// change detector where a failed fetch must fail the tick.
func (c *Client) Channels(ctx context.Context) ([]garden.Channel, error) {
	var raw []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	path := fmt.Sprintf("/guilds/%s/channels", c.guildID)
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("fetch guild channels: %w", err)
	}
	channels := make([]garden.Channel, 0, len(raw))
	for _, ch := range raw {
		if !c.channelAllowed(ch.Name) {
			continue
		}
		channels = append(channels, garden.Channel{ID: ch.ID, Name: ch.Name})
	}
	return channels, nil
}

// Messages is the error-propagating variant of ListMessages.
func (c *Client) Messages(ctx context.Context, channelID string) ([]garden.RawMessage, error) {
	var raw []struct {
		ID      string `json:"id"`
		Content string `json:"content"`
	}
	path := fmt.Sprintf("/channels/%s/messages?limit=%d", channelID, c.pageSize)
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, fmt.Errorf("fetch channel messages: %w", err)
	}
	msgs := make([]garden.RawMessage, 0, len(raw))
	for _, m := range raw {
		if !strings.Contains(m.Content, "http") {
			continue
		}
		msgs = append(msgs, garden.RawMessage{
			ID:        m.ID,
			ChannelID: channelID,
			Content:   m.Content,
		})
	}
	return msgs, nil
}

func (c *Client) channelAllowed(name string) bool {
	if c.prefix != "" && strings.HasPrefix(name, c.prefix) {
		return true
	}
	_, ok := c.allowed[name]
	return ok
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
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
		return fmt.Errorf("discord status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
