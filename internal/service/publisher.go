// Package service holds outbound integrations that sit beside the request
// path, currently the RabbitMQ event publisher.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/doctors-portal/internal/queue"
)

// Publisher sends domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev queue.PortalEvent) error
}

// NopPublisher drops every event. Used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.PortalEvent) error { return nil }

// RabbitPublisher publishes persistent JSON messages to queue.QueueName
// through the default exchange. Each publish opens its own connection, so
// a broker restart never leaves the server holding a dead channel.
type RabbitPublisher struct {
	URL         string
	DialTimeout time.Duration
}

// NewRabbitPublisher returns a publisher for url.
func NewRabbitPublisher(url string) *RabbitPublisher {
	return &RabbitPublisher{URL: url, DialTimeout: 2 * time.Second}
}

// Publish implements Publisher.
func (p *RabbitPublisher) Publish(ctx context.Context, ev queue.PortalEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.DialTimeout)})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", queue.QueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// Notify publishes ev and only logs a failure; the caller's request has
// already succeeded and must not be failed by the event feed.
func Notify(ctx context.Context, p Publisher, ev queue.PortalEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Str("event_id", ev.ID).Msg("events: publish failed")
	}
}

// Enabled reports whether events sent to p go anywhere. Callers use it to
// skip lookups that only enrich an event.
func Enabled(p Publisher) bool {
	switch p.(type) {
	case nil, NopPublisher, *NopPublisher:
		return false
	}
	return true
}
