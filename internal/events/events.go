// Package events publishes order lifecycle notifications to a message broker.
package events

import (
	"context"
	"fmt"
	"time"

	"foodhub/internal/config"
	"foodhub/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Routing keys.
const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
)

// Event is the message body published for an order.
type Event struct {
	Type         string            `json:"type"`
	OrderID      uuid.UUID         `json:"orderId"`
	OrderNumber  string            `json:"orderNumber"`
	CustomerID   uuid.UUID         `json:"customerId"`
	RestaurantID uuid.UUID         `json:"restaurantId"`
	Status       model.OrderStatus `json:"status"`
	TotalAmount  decimal.Decimal   `json:"totalAmount"`
	OccurredAt   time.Time         `json:"occurredAt"`
}

// NewOrderEvent builds an event describing order's current state.
func NewOrderEvent(eventType string, order *model.Order, at time.Time) Event {
	return Event{
		Type:         eventType,
		OrderID:      order.ID,
		OrderNumber:  order.Number,
		CustomerID:   order.CustomerID,
		RestaurantID: order.RestaurantID,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		OccurredAt:   at.UTC(),
	}
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// NewPublisher returns the publisher selected by cfg.Broker.
func NewPublisher(cfg config.EventsConfig, logger zerolog.Logger) (Publisher, error) {
	switch cfg.Broker {
	case "", "none":
		return NewNoopPublisher(logger), nil
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger), nil
	default:
		return nil, fmt.Errorf("unknown events broker %q", cfg.Broker)
	}
}

type noopPublisher struct {
	logger zerolog.Logger
}

// NewNoopPublisher returns a Publisher that only logs.
func NewNoopPublisher(logger zerolog.Logger) Publisher {
	return &noopPublisher{logger: logger.With().Str("component", "events").Logger()}
}

func (p *noopPublisher) Publish(ctx context.Context, events ...Event) error {
	for _, e := range events {
		p.logger.Debug().
			Str("type", e.Type).
			Str("order_number", e.OrderNumber).
			Msg("event dropped, no broker configured")
	}
	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}
