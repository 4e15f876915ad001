// Package notify delivers outbound booking messages over pluggable channels.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
	ChannelCRM   = "crm"
)

var ErrNoTransport = errors.New("notify: no transport for channel")

// Message is one delivery on one channel. Payload is the structured form of
// the message, used by machine recipients such as the CRM webhook.
type Message struct {
	Channel string
	To      string
	Subject string
	Body    string
	Payload json.RawMessage
}

type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher routes a message to the transport registered for its channel.
type Dispatcher struct {
	mu         sync.RWMutex
	transports map[string]Transport
	fallback   Transport
}

// NewDispatcher returns a dispatcher that hands unregistered channels to
// fallback. A nil fallback makes unknown channels an error.
func NewDispatcher(fallback Transport) *Dispatcher {
	return &Dispatcher{
		transports: make(map[string]Transport),
		fallback:   fallback,
	}
}

func (d *Dispatcher) Register(channel string, t Transport) {
	if t == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.transports[channel] = t
}

func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	d.mu.RLock()
	t, ok := d.transports[msg.Channel]
	d.mu.RUnlock()

	if !ok {
		if d.fallback == nil {
			return fmt.Errorf("%w %q", ErrNoTransport, msg.Channel)
		}
		t = d.fallback
	}
	return t.Send(ctx, msg)
}

// LogTransport writes the message to the log instead of sending it.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	return &LogTransport{log: log.With(zap.String("transport", "log"))}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.log.Info("notification",
		zap.String("channel", msg.Channel),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
