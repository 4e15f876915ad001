package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type EmailConfig struct {
	FromEmail string
	FromName  string
}

func (c EmailConfig) withDefaults() EmailConfig {
	if c.FromName == "" {
		c.FromName = "Care Booking"
	}
	return c
}

// SendGridEmailTransport sends plain-text mail through SendGrid.
type SendGridEmailTransport struct {
	apiKey  string
	baseURL string
	cfg     EmailConfig
	log     *zap.Logger
}

// NewSendGridEmailTransport returns nil without an API key.
func NewSendGridEmailTransport(apiKey string, cfg EmailConfig, log *zap.Logger) *SendGridEmailTransport {
	if apiKey == "" {
		return nil
	}
	return &SendGridEmailTransport{
		apiKey: apiKey,
		cfg:    cfg.withDefaults(),
		log:    log.With(zap.String("transport", "sendgrid")),
	}
}

func (t *SendGridEmailTransport) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("notify: email recipient required")
	}

	client := sendgrid.NewSendClient(t.apiKey)
	if t.baseURL != "" {
		client.BaseURL = t.baseURL + "/v3/mail/send"
	}

	from := mail.NewEmail(t.cfg.FromName, t.cfg.FromEmail)
	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmailPlainText(from, msg.Subject, to, msg.Body)

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	t.log.Info("email sent", zap.String("to", msg.To), zap.Int("status", response.StatusCode))
	return nil
}

// SESAPI is the part of the sesv2 client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESEmailTransport struct {
	client SESAPI
	cfg    EmailConfig
	log    *zap.Logger
}

func NewSESEmailTransport(client SESAPI, cfg EmailConfig, log *zap.Logger) *SESEmailTransport {
	if client == nil {
		return nil
	}
	return &SESEmailTransport{
		client: client,
		cfg:    cfg.withDefaults(),
		log:    log.With(zap.String("transport", "ses")),
	}
}

func (t *SESEmailTransport) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("notify: email recipient required")
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", t.cfg.FromName, t.cfg.FromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	output, err := t.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("notify: ses send failed: %w", err)
	}

	t.log.Info("email sent", zap.String("to", msg.To), zap.String("message_id", aws.ToString(output.MessageId)))
	return nil
}
