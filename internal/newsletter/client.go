// Package newsletter talks to the Buttondown REST API for draft emails and
// subscriber signup.
package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is an authenticated Buttondown API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New constructs a Client.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type emailPayload struct {
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Status      string `json:"status,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
}

type emailResponse struct {
	ID string `json:"id"`
}

type subscriberPayload struct {
	Email string `json:"email"`
}

// CreateDraft creates a draft email and returns the provider's email ID.
func (c *Client) CreateDraft(ctx context.Context, subject, body string) (string, error) {
	payload := emailPayload{Subject: subject, Body: body, Status: "draft"}
	respBody, err := c.do(ctx, http.MethodPost, "/emails", payload)
	if err != nil {
		return "", fmt.Errorf("create draft: %w", err)
	}
	var email emailResponse
	if err := json.Unmarshal(respBody, &email); err != nil {
		return "", fmt.Errorf("decode draft response: %w", err)
	}
	if email.ID == "" {
		return "", fmt.Errorf("draft response missing email id")
	}
	return email.ID, nil
}

// Schedule patches an existing draft to scheduled with a publish timestamp.
func (c *Client) Schedule(ctx context.Context, emailID string, publishAt time.Time) error {
	payload := emailPayload{
		Status:      "scheduled",
		PublishDate: publishAt.UTC().Format(time.RFC3339),
	}
	if _, err := c.do(ctx, http.MethodPatch, "/emails/"+emailID, payload); err != nil {
		return fmt.Errorf("schedule email %s: %w", emailID, err)
	}
	return nil
}

// Subscribe creates a subscriber.
func (c *Client) Subscribe(ctx context.Context, email string) error {
	if _, err := c.do(ctx, http.MethodPost, "/subscribers", subscriberPayload{Email: email}); err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("buttondown status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
