package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "salonbook.booking.events"

// Publisher is the subset of *amqp.Channel used for publishing.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes events to a RabbitMQ topic exchange, routed by event type.
type AMQPSink struct {
	mu       sync.Mutex
	ch       Publisher
	closers  []func() error
	exchange string
	logger   *slog.Logger
	closed   bool
}

func DialAMQP(url, exchange string, logger *slog.Logger) (*AMQPSink, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	logger.Info("rabbitmq notification sink connected", "exchange", exchange)

	s := NewAMQPSink(ch, exchange, logger)
	s.closers = []func() error{ch.Close, conn.Close}
	return s, nil
}

func NewAMQPSink(ch Publisher, exchange string, logger *slog.Logger) *AMQPSink {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &AMQPSink{ch: ch, exchange: exchange, logger: logger}
}

func (s *AMQPSink) Name() string { return "amqp" }

func (s *AMQPSink) Notify(ctx context.Context, ev Event) error {
	payload, err := ev.Payload()
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	err = s.ch.PublishWithContext(ctx, s.exchange, ev.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	s.logger.DebugContext(ctx, "event published", "routing_key", ev.Type, "size", len(payload))
	return nil
}

func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	s.closed = true
	return firstErr
}
