package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Channel is the outbound delivery boundary. Send returns true only when the
// provider accepted the message; the dispatcher decides what to do either way.
type Channel interface {
	Send(ctx context.Context, destination, subject, body string) bool
}

// emailChannel posts to a Resend-compatible HTTP email API.
type emailChannel struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

func NewEmailChannel(apiURL, apiKey, from string) Channel {
	return &emailChannel{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *emailChannel) Send(ctx context.Context, destination, subject, body string) bool {
	payload, err := json.Marshal(map[string]interface{}{
		"from":    c.from,
		"to":      []string{destination},
		"subject": subject,
		"text":    body,
	})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
