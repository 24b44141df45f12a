package service

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"

    "github.com/iliyamo/storefront/internal/queue"
)

// EventPublisher delivers domain events.  Failures are returned so the
// caller can log them; they never undo the operation that raised the event.
type EventPublisher interface {
    PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishUserRegistered(context.Context, queue.UserRegisteredEvent) error {
    return nil
}

// AMQPPublisher publishes events to RabbitMQ, dialing per event.
// Registrations are rare enough that a pooled connection is not needed.
type AMQPPublisher struct {
    url    string
    logger zerolog.Logger
    dial   func(url string) (*amqp.Connection, error)
}

// NewPublisher returns an AMQPPublisher for url, or a NopPublisher when url
// is empty.
func NewPublisher(url string, logger zerolog.Logger) EventPublisher {
    if url == "" {
        return NopPublisher{}
    }
    return &AMQPPublisher{url: url, logger: logger, dial: amqp.Dial}
}

// PublishUserRegistered sends ev as a persistent JSON message to the
// user.registered queue, declaring the queue first.
func (p *AMQPPublisher) PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    return p.publish(ctx, queue.UserRegisteredQueue, body)
}

func (p *AMQPPublisher) publish(ctx context.Context, queueName string, body []byte) error {
    conn, err := p.dial(p.url)
    if err != nil {
        p.logger.Warn().Err(err).Str("queue", queueName).Msg("amqp dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.logger.Warn().Err(err).Str("queue", queueName).Msg("amqp channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
        p.logger.Warn().Err(err).Str("queue", queueName).Msg("amqp queue declare failed")
        return err
    }

    // default exchange, routing key = queue name
    err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    })
    if err != nil {
        p.logger.Warn().Err(err).Str("queue", queueName).Msg("amqp publish failed")
    }
    return err
}
