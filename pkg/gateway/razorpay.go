// Package gateway talks to the Razorpay Orders API and checks the
// signatures Razorpay attaches to checkout callbacks and webhooks.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("care-booking/pkg/gateway")

var ErrSignatureMismatch = errors.New("gateway: signature mismatch")

const defaultBaseURL = "https://api.razorpay.com"

type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type RazorpayClient struct {
	cfg        Config
	httpClient *http.Client
}

func NewRazorpayClient(cfg Config) *RazorpayClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &RazorpayClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *RazorpayClient) KeyID() string {
	return c.cfg.KeyID
}

// CreateOrder opens a server-side order the checkout widget is bound to.
func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if c.cfg.KeyID == "" || c.cfg.KeySecret == "" {
		return nil, errors.New("gateway: razorpay credentials missing")
	}

	ctx, span := tracer.Start(ctx, "gateway.razorpay.create_order")
	defer span.End()
	span.SetAttributes(
		attribute.String("care.receipt", req.Receipt),
		attribute.Int64("care.amount_paise", req.Amount),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: encode order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: build order request: %w", err)
	}
	httpReq.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway: create order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("gateway: read order response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		return nil, fmt.Errorf("gateway: create order returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("gateway: decode order: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("gateway: order response missing id")
	}
	return &order, nil
}

// ToPaise converts rupees to the integer minor units Razorpay expects.
func ToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// VerifyPaymentSignature checks the checkout callback signature, which is
// hex(HMAC-SHA256(secret, order_id + "|" + payment_id)).
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrSignatureMismatch
	}
	return verifyHex([]byte(orderID+"|"+paymentID), signature, secret)
}

// VerifyWebhookSignature checks X-Razorpay-Signature over the raw body.
func VerifyWebhookSignature(body []byte, signature, secret string) error {
	if len(body) == 0 || signature == "" {
		return ErrSignatureMismatch
	}
	return verifyHex(body, signature, secret)
}

func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifyHex(payload []byte, signature, secret string) error {
	if secret == "" {
		return errors.New("gateway: signing secret not configured")
	}
	expected := Sign(payload, secret)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return ErrSignatureMismatch
	}
	return nil
}

// WebhookEvent is the subset of a Razorpay webhook body the booking flow
// reads.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type PaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Status           string `json:"status"`
	ErrorDescription string `json:"error_description"`
}

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("gateway: decode webhook: %w", err)
	}
	if evt.Event == "" {
		return nil, errors.New("gateway: webhook missing event")
	}
	return &evt, nil
}
