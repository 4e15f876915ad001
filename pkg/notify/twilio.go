package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var twilioTracer = otel.Tracer("care-booking/pkg/notify/twilio")

const twilioBaseURL = "https://api.twilio.com"

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	// BaseURL overrides the Twilio API host.
	BaseURL string
}

// TwilioSMSTransport posts one SMS per Send through the Twilio REST API.
// Retries belong to the caller.
type TwilioSMSTransport struct {
	cfg        TwilioConfig
	httpClient *http.Client
	log        *zap.Logger
}

// NewTwilioSMSTransport returns nil when credentials are missing.
func NewTwilioSMSTransport(cfg TwilioConfig, log *zap.Logger) *TwilioSMSTransport {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = twilioBaseURL
	}
	return &TwilioSMSTransport{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With(zap.String("transport", "twilio")),
	}
}

func (t *TwilioSMSTransport) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("notify: sms recipient required")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return errors.New("notify: sms body required")
	}

	ctx, span := twilioTracer.Start(ctx, "notify.twilio.send")
	defer span.End()
	span.SetAttributes(attribute.String("care.to", msg.To))

	form := url.Values{}
	form.Set("To", IndianE164(msg.To))
	form.Set("From", t.cfg.From)
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.cfg.BaseURL, t.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("notify: build twilio request: %w", err)
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: twilio request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		return fmt.Errorf("notify: twilio returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	t.log.Info("sms sent", zap.String("to", msg.To))
	return nil
}

// IndianE164 normalises a local 10-digit mobile to +91 form. Anything that
// already carries a country code is returned unchanged.
func IndianE164(mobile string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, mobile)

	switch {
	case strings.HasPrefix(strings.TrimSpace(mobile), "+"):
		return "+" + digits
	case len(digits) == 10:
		return "+91" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return "+91" + digits[1:]
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+" + digits
	default:
		return mobile
	}
}
