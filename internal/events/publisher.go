// Package events publishes purchase outcomes to an operations topic.
// Fulfillment anomalies (money captured, content undeliverable) must reach
// an operator even if the chat message to the user is lost.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"log/slog"

	"shopbot/internal/config"
	"shopbot/internal/logger"
)

// Kind enumerates published event kinds.
type Kind string

const (
	// KindPurchaseCompleted marks a successful payment and delivery.
	KindPurchaseCompleted Kind = "purchase_completed"
	// KindFulfillmentAnomaly marks a captured payment whose payload did not
	// resolve to an active item.
	KindFulfillmentAnomaly Kind = "fulfillment_anomaly"
)

// PurchaseEvent is the wire payload for both event kinds.
type PurchaseEvent struct {
	Kind       Kind      `json:"kind"`
	ItemID     int64     `json:"item_id,omitempty"`
	Payload    string    `json:"payload"`
	Amount     int       `json:"amount"`
	Currency   string    `json:"currency"`
	UserID     int64     `json:"user_id"`
	SupportRef string    `json:"support_ref,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers purchase events. Implementations must be safe for
// concurrent use by multiple handlers.
type Publisher interface {
	Publish(ctx context.Context, ev PurchaseEvent) error
	Close() error
}

// New returns a Kafka-backed publisher, or a no-op one when no brokers are
// configured.
func New(cfg config.KafkaConfig) Publisher {
	if len(cfg.Brokers) == 0 {
		return nopPublisher{}
	}
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		topic: cfg.Topic,
	}
}

type kafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func (p *kafkaPublisher) Publish(ctx context.Context, ev PurchaseEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", ev.Kind, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Payload),
		Value: raw,
	})
	if err != nil {
		logger.EV.Error("publish failed",
			slog.String("event", "publish"),
			slog.String("status", "fail"),
			slog.String("kind", string(ev.Kind)),
			slog.String("topic", p.topic),
			slog.String("payload", ev.Payload),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("events: publish %s: %w", ev.Kind, err)
	}

	logger.EV.Debug("event published",
		slog.String("event", "publish"),
		slog.String("status", "ok"),
		slog.String("kind", string(ev.Kind)),
		slog.String("topic", p.topic),
		slog.String("payload", ev.Payload),
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, PurchaseEvent) error { return nil }
func (nopPublisher) Close() error                                 { return nil }
