package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is implemented by *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher writing to topic. Messages are keyed
// by restaurant so one restaurant's orders stay on one partition.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) Publisher {
	logger = logger.With().Str("component", "kafka-publisher").Logger()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf(msg, args...)
		}),
	}

	logger.Info().Strs("brokers", brokers).Str("topic", topic).Msg("Kafka publisher initialised")

	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(w messageWriter, logger zerolog.Logger) *kafkaPublisher {
	return &kafkaPublisher{writer: w, logger: logger}
}

func (p *kafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		body, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.RestaurantID.String()),
			Value: body,
			Time:  e.OccurredAt,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(e.Type)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error().Err(err).Int("count", len(msgs)).Msg("failed to write events")
		return fmt.Errorf("failed to write events: %w", err)
	}

	p.logger.Debug().Int("count", len(msgs)).Msg("events written")
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
