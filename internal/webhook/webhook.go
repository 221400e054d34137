// Package webhook posts domain events to an external automation endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Client delivers event payloads to a single configured URL. Delivery is
// best-effort: failures are logged, never retried, and never surfaced to
// the operation that triggered them.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a destination URL is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

type payload struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
	Form  string `json:"form"`
}

// Send posts {event, data, form} as JSON. Callers fire it from a goroutine;
// the error return exists for tests and logging at the call site.
func (c *Client) Send(ctx context.Context, event string, data any, form string) error {
	if c.url == "" {
		return nil
	}

	body, err := json.Marshal(payload{Event: event, Data: data, Form: form})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("webhook delivery failed")
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("event", event).Msg("webhook rejected")
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	log.Debug().Str("event", event).Msg("webhook delivered")
	return nil
}
