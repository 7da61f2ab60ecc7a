package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"moradia/pkg/logger"
)

// Publisher emits appointment lifecycle events. Publishing is best effort:
// callers log failures and carry on, a broker outage must never fail a
// booking request.
type Publisher interface {
	PublishAppointmentEvent(ctx context.Context, evt AppointmentEvent) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	source string
	log    *logger.Logger
}

// NewPublisher returns a Kafka-backed publisher, or a no-op one when no
// brokers are configured (local development, tests).
func NewPublisher(brokers []string, topic string, source string, log *logger.Logger) Publisher {
	if len(brokers) == 0 {
		log.Info("Event publishing disabled, no Kafka brokers configured")
		return &noopPublisher{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // hash by key keeps per-listing ordering
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}

	log.Info("Event publisher initialized", "brokers", brokers, "topic", topic)
	return &kafkaPublisher{
		writer: writer,
		source: source,
		log:    log,
	}
}

func (p *kafkaPublisher) PublishAppointmentEvent(ctx context.Context, evt AppointmentEvent) error {
	if evt.EventID == "" {
		evt.EventID = uuid.New().String()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode appointment event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.ListingID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(evt.EventID)},
			{Key: HeaderEventType, Value: []byte(evt.Type)},
			{Key: HeaderSource, Value: []byte(p.source)},
			{Key: HeaderTimestamp, Value: []byte(evt.OccurredAt.Format(time.RFC3339))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish appointment event: %w", err)
	}

	p.log.Debug("Appointment event published",
		"event_id", evt.EventID,
		"type", evt.Type,
		"appointment_id", evt.AppointmentID,
		"listing_id", evt.ListingID,
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

func (*noopPublisher) PublishAppointmentEvent(context.Context, AppointmentEvent) error {
	return nil
}

func (*noopPublisher) Close() error { return nil }
