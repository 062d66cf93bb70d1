// Package events publishes content lifecycle events to Kafka for
// downstream consumers (activity feeds, audit, analytics). Publishing is
// best-effort from the core paths: a broker outage never blocks a save.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/atriumhq/atrium/internal/config"
	"github.com/atriumhq/atrium/pkg/models"
)

// Topic names
const (
	TopicContentUpdates = "content.updates"
	TopicIndexActivity  = "index.activity"
	TopicSearchActivity = "search.activity"
)

var (
	// ErrBusClosed is returned when publishing on a closed bus
	ErrBusClosed = errors.New("event bus is closed")
)

// Publisher is the interface the core depends on
type Publisher interface {
	Publish(ctx context.Context, event models.BaseEvent) error
}

// KafkaBus implements Publisher using a single shared writer
type KafkaBus struct {
	writer *kafka.Writer
	mu     sync.Mutex
	closed bool
}

func NewKafkaBus(cfg config.EventsConfig) (*KafkaBus, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		Compression:  kafka.Gzip,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaBus{writer: writer}, nil
}

// Publish routes the event to its topic, keyed by document id so all
// events for one document land in order on the same partition.
func (b *KafkaBus) Publish(ctx context.Context, event models.BaseEvent) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	b.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := kafka.Message{
		Topic: topicFor(event.Type),
		Key:   []byte(event.DocumentID),
		Value: data,
		Time:  time.Now().UTC(),
	}

	return b.writer.WriteMessages(ctx, message)
}

func topicFor(eventType models.EventType) string {
	switch eventType {
	case models.EventTypeDocumentIndexed, models.EventTypeIndexDropped:
		return TopicIndexActivity
	case models.EventTypeSearchPerformed:
		return TopicSearchActivity
	default:
		return TopicContentUpdates
	}
}

func (b *KafkaBus) Ping(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", b.writer.Addr.String())
	if err != nil {
		return err
	}
	return conn.Close()
}

func (b *KafkaBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.writer.Close()
}

// NopPublisher is used when the event bus is disabled in configuration
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event models.BaseEvent) error { return nil }
