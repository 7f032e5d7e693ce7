package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/salonbook/libs/otel"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

var ErrQueueFull = errors.New("notification queue full")

// MessageWriter is the subset of *kafka.Writer the sink needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConfig struct {
	Brokers     string
	TopicPrefix string
	QueueSize   int
	FlushEvery  time.Duration
	BatchSize   int
	// FailureThreshold is the number of consecutive failed writes that opens the breaker.
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

func (c *KafkaConfig) withDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = 500 * time.Millisecond
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
}

type queuedMessage struct {
	msg   kafka.Message
	trace otelx.TraceLink
}

// KafkaSink queues events in memory and publishes them in batches from Run.
// Notify never waits on the broker.
type KafkaSink struct {
	writer    MessageWriter
	logger    *slog.Logger
	prefix    string
	queue     chan queuedMessage
	pending   []queuedMessage
	every     time.Duration
	batchSize int
	breaker   *gobreaker.CircuitBreaker[struct{}]

	// mu orders enqueues against shutdown so nothing lands after the drain.
	mu     sync.RWMutex
	closed bool
}

func NewKafkaSink(logger *slog.Logger, cfg KafkaConfig) (*KafkaSink, error) {
	brokers := kafkax.SplitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("kafka sink requires KAFKA_BROKERS")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return newKafkaSink(writer, logger, cfg), nil
}

func newKafkaSink(writer MessageWriter, logger *slog.Logger, cfg KafkaConfig) *KafkaSink {
	cfg.withDefaults()
	s := &KafkaSink{
		writer:    writer,
		logger:    logger,
		prefix:    cfg.TopicPrefix,
		queue:     make(chan queuedMessage, cfg.QueueSize),
		every:     cfg.FlushEvery,
		batchSize: cfg.BatchSize,
	}
	threshold := cfg.FailureThreshold
	s.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-notify",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return s
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Notify(ctx context.Context, ev Event) error {
	payload, err := ev.Payload()
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	meta := kafkax.EventMeta{EventID: ev.ID, EventType: ev.Type, OccurredAt: ev.OccurredAt}
	q := queuedMessage{
		msg: kafka.Message{
			Topic:   kafkax.Topic(s.prefix, ev.Type),
			Key:     []byte(ev.AppointmentID),
			Value:   payload,
			Headers: meta.Headers(),
		},
		trace: otelx.LinkFrom(ctx),
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.queue <- q:
		return nil
	default:
		return ErrQueueFull
	}
}

// close stops accepting events. It returns false if the sink was already closed.
func (s *KafkaSink) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	return true
}

// Run publishes queued events until ctx is done. It then rejects further
// events with ErrClosed, makes a final attempt to drain the queue and closes
// the writer. Cancel ctx only after every producer has stopped.
func (s *KafkaSink) Run(ctx context.Context) {
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if !s.close() {
				return
			}
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			for s.Pending() > 0 {
				if err := s.flush(drainCtx); err != nil {
					s.logger.Error("kafka sink drain failed", "err", err, "dropped", s.Pending())
					break
				}
			}
			cancel()
			if err := s.writer.Close(); err != nil {
				s.logger.Warn("kafka writer close failed", "err", err)
			}
			return
		case <-ticker.C:
			if err := s.flush(ctx); err != nil {
				s.logger.Error("kafka sink publish failed", "err", err, "pending", s.Pending())
			}
		}
	}
}

// Pending reports events not yet written, including a batch awaiting retry.
func (s *KafkaSink) Pending() int {
	return len(s.queue) + len(s.pending)
}

// flush writes one batch. A failed batch is kept and retried first on the next call.
func (s *KafkaSink) flush(ctx context.Context) error {
	batch := s.pending
	for len(batch) < s.batchSize {
		select {
		case q := <-s.queue:
			batch = append(batch, q)
			continue
		default:
		}
		break
	}
	if len(batch) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(batch))
	for _, q := range batch {
		msg := q.msg
		msg.Headers = kafkax.InjectTraceHeaders(q.trace.Attach(ctx), append([]kafka.Header(nil), q.msg.Headers...))
		msgs = append(msgs, msg)
	}

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.writer.WriteMessages(ctx, msgs...)
	})
	if err != nil {
		s.pending = batch
		return err
	}
	s.pending = nil
	return nil
}
