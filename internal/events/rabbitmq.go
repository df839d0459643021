package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// amqpChannel is the subset of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type rabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	logger   zerolog.Logger
}

// NewRabbitMQPublisher dials url and declares a durable topic exchange.
func NewRabbitMQPublisher(url, exchange string, logger zerolog.Logger) (Publisher, error) {
	logger = logger.With().Str("component", "rabbitmq-publisher").Logger()

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	logger.Info().Str("exchange", exchange).Msg("RabbitMQ publisher initialised")

	p := newRabbitMQPublisher(ch, exchange, logger)
	p.conn = conn
	return p, nil
}

func newRabbitMQPublisher(ch amqpChannel, exchange string, logger zerolog.Logger) *rabbitMQPublisher {
	return &rabbitMQPublisher{channel: ch, exchange: exchange, logger: logger}
}

// Publish sends each event as a persistent JSON message routed by its type.
func (p *rabbitMQPublisher) Publish(ctx context.Context, events ...Event) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, e := range events {
		body, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		err = p.channel.PublishWithContext(ctx, p.exchange, e.Type, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    e.OrderID.String(),
			Timestamp:    e.OccurredAt,
			Body:         body,
		})
		if err != nil {
			p.logger.Error().
				Err(err).
				Str("routing_key", e.Type).
				Str("order_number", e.OrderNumber).
				Msg("failed to publish event")
			return fmt.Errorf("failed to publish %s: %w", e.Type, err)
		}

		p.logger.Debug().
			Str("routing_key", e.Type).
			Str("order_number", e.OrderNumber).
			Int("message_size", len(body)).
			Msg("event published")
	}
	return nil
}

func (p *rabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
