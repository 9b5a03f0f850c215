package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/restaurant-booking/internal/queue"
)

// EventPublisher delivers domain events.  Booking creation never fails
// because of a publisher error.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, event queue.BookingCreatedEvent) error
}

// QueuePublisher publishes events to RabbitMQ.  It dials per message, which
// keeps it stateless at the cost of a connection per booking.
type QueuePublisher struct {
	url string
	log *slog.Logger
}

func NewQueuePublisher(url string, log *slog.Logger) *QueuePublisher {
	return &QueuePublisher{url: url, log: log}
}

// PublishBookingCreated publishes event to the booking.created queue as a
// persistent message.  Errors are logged and returned so the caller can
// choose to ignore them.
func (p *QueuePublisher) PublishBookingCreated(ctx context.Context, event queue.BookingCreatedEvent) error {
	if err := p.publish(ctx, queue.BookingCreatedQueue, event.EventID, event); err != nil {
		p.log.Warn("rabbitmq: publish failed", "queue", queue.BookingCreatedQueue, "event_id", event.EventID, "error", err)
		return err
	}
	return nil
}

func (p *QueuePublisher) publish(ctx context.Context, queueName, messageID string, payload any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) PublishBookingCreated(context.Context, queue.BookingCreatedEvent) error {
	return nil
}
