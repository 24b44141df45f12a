package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"
)

const maxBackoff = 30 * time.Second

// openAuditLog opens the audit file for appending.  Swapped in tests.
var openAuditLog = func(path string) (io.WriteCloser, error) {
    return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// AuditConsumer appends every user.registered event to <Dir>/audit.log.
type AuditConsumer struct {
    URL    string
    Dir    string
    Logger zerolog.Logger
}

// Run connects to the broker and consumes until ctx is cancelled, redialing
// with exponential backoff whenever the connection drops.  Malformed
// messages are rejected without requeue.
func (a *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(a.URL)
        if err != nil {
            a.Logger.Warn().Err(err).Dur("retry_in", backoff).Msg("audit consumer: dial failed")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            backoff = min(backoff*2, maxBackoff)
            continue
        }
        backoff = time.Second

        err = a.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        a.Logger.Warn().Err(err).Msg("audit consumer: consume loop ended, reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (a *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        a.Logger.Warn().Err(err).Msg("audit consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(UserRegisteredQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, UserRegisteredQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := a.Handle(d.Body); err != nil {
            a.Logger.Error().Err(err).Msg("audit consumer: handle message failed")
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// Handle decodes one message body and appends it to the audit log.  A
// failed close counts as a failed write.
func (a *AuditConsumer) Handle(body []byte) (err error) {
    var ev UserRegisteredEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.UserID == "" {
        return errors.New("event without user_id")
    }
    if err := os.MkdirAll(a.Dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", a.Dir, err)
    }
    f, err := openAuditLog(filepath.Join(a.Dir, "audit.log"))
    if err != nil {
        return fmt.Errorf("open audit log: %w", err)
    }
    defer func() {
        if cerr := f.Close(); cerr != nil && err == nil {
            err = fmt.Errorf("close audit log: %w", cerr)
        }
    }()

    line := fmt.Sprintf("[%s] User registered | event_id=%s | user_id=%s | email=%q | role=%s\n",
        ev.RegisteredAt.UTC().Format(time.RFC3339), ev.EventID, ev.UserID, ev.Email, ev.Role)
    if _, err := io.WriteString(f, line); err != nil {
        return fmt.Errorf("write audit log: %w", err)
    }
    return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
