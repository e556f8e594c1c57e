package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/climate-alert-service/internal/domain"
)

// Publisher produces newly created alert events to a Kafka topic so
// downstream consumers (dashboards, archival) see them without polling
// the database. It implements engine.AlertPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishAlert serializes and publishes one alert event.
func (p *Publisher) PublishAlert(ctx context.Context, event domain.AlertEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an AlertEvent into a Kafka message. The key
// is the natural key so replays of the same alert land on one partition.
func serializeToMessage(event domain.AlertEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%s|%s|%s", event.CityID, event.TypeID, event.Date)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_type", Value: []byte(event.TypeID)},
			{Key: "severity", Value: []byte(event.Severity)},
		},
	}, nil
}
