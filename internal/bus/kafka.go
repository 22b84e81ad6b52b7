package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/andrzejf1994/ha-ios-nextalarm/internal/logger"
)

// Kafka consumes event envelopes from a Kafka topic and dispatches them to
// subscribed handlers. Messages are committed whether or not a handler
// succeeded; a malformed envelope is logged and skipped, never retried.
type Kafka struct {
	// reader is the underlying consumer-group reader.
	reader *kafka.Reader
	// mu protects the handler table.
	mu sync.Mutex
	// handlers maps event type to its subscribers.
	handlers map[string][]Handler
}

// NewKafka creates a consumer for the given brokers, topic and group.
func NewKafka(brokers []string, topic, groupID string) *Kafka {
	return &Kafka{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     groupID,
			MinBytes:    1,
			MaxBytes:    10e6,
			StartOffset: kafka.LastOffset,
		}),
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for an event type.
func (k *Kafka) Subscribe(eventType string, handler Handler) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.handlers[eventType] = append(k.handlers[eventType], handler)
}

// Run consumes messages until the context is canceled.
func (k *Kafka) Run(ctx context.Context) error {
	for {
		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}

			return fmt.Errorf("fetch message: %w", err)
		}

		event, err := DecodeEvent(msg.Value)
		if err != nil {
			logger.WarnKV(ctx, "Dropping malformed event envelope",
				"offset", msg.Offset, "error", err)
		} else {
			k.dispatch(ctx, event)
		}

		if err := k.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

// dispatch invokes every handler subscribed to the event's type.
func (k *Kafka) dispatch(ctx context.Context, event Event) {
	k.mu.Lock()
	handlers := append([]Handler(nil), k.handlers[event.Type]...)
	k.mu.Unlock()

	if len(handlers) == 0 {
		logger.DebugKV(ctx, "No subscribers for event", "event_type", event.Type)

		return
	}

	for _, handler := range handlers {
		handler(ctx, event)
	}
}

// Close releases the underlying reader.
func (k *Kafka) Close() error {
	return k.reader.Close()
}

// Publisher writes event envelopes to a Kafka topic, keyed by person so all
// of one person's events land in the same partition.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a producer for the given brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish encodes and writes one event.
func (p *Publisher) Publish(ctx context.Context, key string, event Event) error {
	value, err := EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	return nil
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
