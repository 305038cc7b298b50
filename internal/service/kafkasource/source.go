package kafkasource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FinSight/internal/domain/models"
	drepo "FinSight/internal/domain/repository"
	pkgkafka "FinSight/pkg/kafka"
)

// Source implements an EventSource on top of the Kafka consumer: each
// consumed message becomes a raw event on the Read channel. Lets the
// platform sit downstream of another producer instead of owning the
// upstream feed.
type Source struct {
	topic    string
	consumer *pkgkafka.Consumer

	events    chan *models.RawEvent
	errs      chan error
	connected bool
}

type Config struct {
	Brokers    []string
	Topic      string
	GroupID    string
	Workers    int
	BufferSize int
	RetryMax   int
	BackoffMin time.Duration
	BackoffMax time.Duration
	DLQTopic   string
}

func New(cfg Config) (drepo.EventSource, error) {
	opts := []pkgkafka.ConsumerOption{
		pkgkafka.WithConsumerBrokers(cfg.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.RetryMax, cfg.BackoffMin, cfg.BackoffMax),
	}
	if cfg.DLQTopic != "" {
		opts = append(opts, pkgkafka.WithConsumerDLQ(cfg.DLQTopic))
	}
	consumer, err := pkgkafka.NewConsumer(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka source: %w", err)
	}
	s := &Source{
		topic:    cfg.Topic,
		consumer: consumer,
		events:   make(chan *models.RawEvent, cfg.BufferSize),
		errs:     make(chan error, 1),
	}
	consumer.RegisterHandler(s)
	return s, nil
}

// Topic implements kafka.MessageHandler.
func (s *Source) Topic() string { return s.topic }

// Handle implements kafka.MessageHandler: decode and forward.
func (s *Source) Handle(_ context.Context, b []byte) error {
	var ev models.RawEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	select {
	case s.events <- &ev:
	default:
		// drop on backpressure rather than stall the partition
	}
	return nil
}

func (s *Source) Connect(_ context.Context) error {
	if err := s.consumer.Start(); err != nil {
		return fmt.Errorf("kafka source start: %w", err)
	}
	s.connected = true
	return nil
}

// Read exposes the handler's channels. They are left open on cancel:
// consumer workers may still be draining, and Handle never blocks on a
// full buffer, so nothing leaks.
func (s *Source) Read(_ context.Context) (<-chan *models.RawEvent, <-chan error) {
	return s.events, s.errs
}

func (s *Source) Reconnect(ctx context.Context) error {
	// the consumer group handles rebalances internally
	if s.connected {
		return nil
	}
	return s.Connect(ctx)
}

func (s *Source) Close() error {
	s.connected = false
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.consumer.Stop(ctx)
}

func (s *Source) IsConnected() bool { return s.connected }
