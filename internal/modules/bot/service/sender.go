package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sender delivers bot replies. The production implementation posts to the
// messaging platform's HTTP API; tests substitute a recording stub.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type httpSender struct {
	apiBase string
	token   string
	client  *http.Client
}

func NewHTTPSender(apiBase, token string) Sender {
	return &httpSender{
		apiBase: apiBase,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *httpSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendMessage returned status %d", resp.StatusCode)
	}
	return nil
}
