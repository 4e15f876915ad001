package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebhookTransport POSTs the message payload as JSON to a fixed URL (the CRM
// scenario hook). The recipient on the message is ignored.
type WebhookTransport struct {
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

// NewWebhookTransport returns nil when url is empty.
func NewWebhookTransport(url string, timeout time.Duration, log *zap.Logger) *WebhookTransport {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookTransport{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With(zap.String("transport", "webhook")),
	}
}

func (t *WebhookTransport) Send(ctx context.Context, msg Message) error {
	if len(msg.Payload) == 0 {
		return errors.New("notify: webhook payload required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(msg.Payload))
	if err != nil {
		return fmt.Errorf("notify: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned %d", resp.StatusCode)
	}

	t.log.Debug("webhook delivered", zap.Int("status", resp.StatusCode))
	return nil
}
