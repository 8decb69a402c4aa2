package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const DefaultExchange = "netwatch.status"

// NetworkStatusChangedEvent is the message body published on every alert.
type NetworkStatusChangedEvent struct {
	EventID             string    `json:"eventId"`
	Timestamp           time.Time `json:"timestamp"`
	Target              string    `json:"target"`
	PreviousKind        string    `json:"previousKind,omitempty"`
	CurrentKind         string    `json:"currentKind"`
	IsConnected         bool      `json:"isConnected"`
	IsInternetReachable *bool     `json:"isInternetReachable"`
	IsServerReachable   bool      `json:"isServerReachable"`
	ConnectionType      string    `json:"connectionType"`
}

// AMQP publishes alerts to a fanout exchange. With no URL it only logs.
type AMQP struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   *zap.Logger
}

func NewAMQP(url, exchange string, logger *zap.Logger) (*AMQP, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if url == "" {
		logger.Info("amqp_disabled")
		return &AMQP{exchange: exchange, logger: logger}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQP{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

func newEvent(a Alert) NetworkStatusChangedEvent {
	s := a.Status.Clone()
	return NetworkStatusChangedEvent{
		EventID:             uuid.NewString(),
		Timestamp:           a.At.UTC(),
		Target:              a.Target,
		PreviousKind:        string(a.Previous),
		CurrentKind:         string(a.Current),
		IsConnected:         s.IsConnected,
		IsInternetReachable: s.IsInternetReachable,
		IsServerReachable:   s.IsServerReachable,
		ConnectionType:      s.ConnectionType,
	}
}

func (p *AMQP) Notify(ctx context.Context, a Alert) error {
	ev := newEvent(a)
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if p.ch == nil {
		p.logger.Info("amqp_event_noop",
			zap.String("exchange", p.exchange),
			zap.String("event_id", ev.EventID),
			zap.String("kind", ev.CurrentKind),
		)
		return nil
	}

	return p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    ev.Timestamp,
		Type:         "NetworkStatusChanged",
		Body:         body,
	})
}

func (p *AMQP) Close() error {
	var err error
	if p.ch != nil {
		err = multierr.Append(err, p.ch.Close())
	}
	if p.conn != nil {
		err = multierr.Append(err, p.conn.Close())
	}
	return err
}
