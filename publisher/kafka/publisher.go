// Package kafka publishes committed token events to a Kafka topic.
//
// The Publisher is a plugin: register it with gametoken.WithPlugin and every
// committed event is written as a JSON message in commit order. Messages are
// keyed by operation ID and hash-balanced, so both legs of a fee-charging
// transfer land on one partition in fee-first order.
//
// Writes are synchronous and run while the token holds its dispatch lock,
// so the next write operation waits for the broker. NewPublisher flushes
// after DefaultBatchTimeout rather than kafka-go's one second default; raise
// it with WithBatchTimeout to trade write latency for larger batches.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/plugin"
)

// DefaultTopic receives events when no topic is configured.
const DefaultTopic = "gametoken.events"

// DefaultBatchTimeout bounds how long a write waits to fill a batch.
const DefaultBatchTimeout = 10 * time.Millisecond

// Compile-time interface checks.
var (
	_ plugin.Plugin     = (*Publisher)(nil)
	_ plugin.OnEvent    = (*Publisher)(nil)
	_ plugin.OnShutdown = (*Publisher)(nil)
)

// Writer is the subset of *kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithBatchTimeout sets the writer's batch timeout. It only applies to
// publishers built by NewPublisher.
func WithBatchTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.batchTimeout = d
		}
	}
}

// WithKinds restricts publishing to the given event kinds.
func WithKinds(kinds ...event.Kind) Option {
	return func(p *Publisher) {
		p.kinds = make(map[event.Kind]bool, len(kinds))
		for _, k := range kinds {
			p.kinds[k] = true
		}
	}
}

// Publisher writes events to Kafka.
type Publisher struct {
	writer Writer
	kinds  map[event.Kind]bool // nil = all kinds
	logger *slog.Logger

	batchTimeout time.Duration
}

// NewPublisher creates a Publisher writing to topic on brokers.
func NewPublisher(brokers []string, topic string, opts ...Option) *Publisher {
	p := newPublisher(opts...)
	p.writer = NewWriter(brokers, topic, p.batchTimeout)
	return p
}

// NewWithWriter creates a Publisher on an existing writer.
func NewWithWriter(w Writer, opts ...Option) *Publisher {
	p := newPublisher(opts...)
	p.writer = w
	return p
}

func newPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		logger:       slog.Default(),
		batchTimeout: DefaultBatchTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewWriter builds the kafka.Writer used by NewPublisher. Messages are
// balanced by key hash and acknowledged by the partition leader.
func NewWriter(brokers []string, topic string, batchTimeout time.Duration) *kafka.Writer {
	if topic == "" {
		topic = DefaultTopic
	}
	if batchTimeout <= 0 {
		batchTimeout = DefaultBatchTimeout
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
}

// Name implements plugin.Plugin.
func (p *Publisher) Name() string { return "kafka-publisher" }

// OnEvent implements plugin.OnEvent.
func (p *Publisher) OnEvent(ctx context.Context, evt *event.Event) error {
	if p.kinds != nil && !p.kinds[evt.Kind] {
		return nil
	}
	msg, err := Message(evt)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("gametoken/kafka: publish event %d: %w", evt.Sequence, err)
	}
	return nil
}

// OnShutdown implements plugin.OnShutdown.
func (p *Publisher) OnShutdown(_ context.Context) error {
	if err := p.writer.Close(); err != nil {
		p.logger.Warn("kafka publisher close failed", "error", err)
		return err
	}
	return nil
}

// Message encodes evt. Events of one operation share a key and therefore a
// partition.
func Message(evt *event.Event) (kafka.Message, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("gametoken/kafka: encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(evt.OperationID.String()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(evt.Kind)},
			{Key: "sequence", Value: []byte(strconv.FormatUint(evt.Sequence, 10))},
		},
		Time: evt.Timestamp,
	}, nil
}
