// Package mq delivers reservation events to RabbitMQ so downstream
// consumers (notifications, billing exports) can react to bookings
// without coupling to the HTTP service.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/workspace-booking/internal/application"
)

const (
	// Exchange is the topic exchange reservation events are published to.
	// Routing keys are the event kinds, e.g. "reservation.accepted".
	Exchange = "booking.events"

	publishTimeout = 5 * time.Second
)

// Publisher holds a live AMQP connection and implements
// application.EventPublisher. Construct one with Connect and Close it on
// shutdown.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

// Connect dials the broker, opens a channel, and declares the topic
// exchange. The exchange is durable so events survive broker restarts.
func Connect(url string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("mq: dial broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mq: open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		Exchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("mq: declare exchange: %w", err)
	}

	logger.Info("connected to message broker", "exchange", Exchange)
	return &Publisher{conn: conn, channel: channel, logger: logger}, nil
}

// PublishReservationEvent marshals the event and publishes it with the
// event kind as routing key. Messages are persistent.
func (p *Publisher) PublishReservationEvent(ctx context.Context, event application.ReservationEvent) error {
	if p == nil || p.channel == nil {
		return fmt.Errorf("mq: publisher is not connected")
	}

	body, err := json.Marshal(newEventPayload(event))
	if err != nil {
		return fmt.Errorf("mq: marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		Exchange,
		event.Kind, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt.UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("mq: publish %s: %w", event.Kind, err)
	}

	p.logger.DebugContext(ctx, "reservation event published",
		"kind", event.Kind,
		"reservation_id", event.ReservationID,
	)
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type eventPayload struct {
	Kind          string `json:"kind"`
	ReservationID string `json:"reservation_id"`
	AreaID        string `json:"area_id"`
	Date          string `json:"date"`
	CreatorID     string `json:"creator_id"`
	Seats         int    `json:"seats"`
	OccurredAt    string `json:"occurred_at"`
}

func newEventPayload(event application.ReservationEvent) eventPayload {
	return eventPayload{
		Kind:          event.Kind,
		ReservationID: event.ReservationID,
		AreaID:        event.AreaID,
		Date:          event.Date,
		CreatorID:     event.CreatorID,
		Seats:         event.Seats,
		OccurredAt:    event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}
