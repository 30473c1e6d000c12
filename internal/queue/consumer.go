package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
    "gopkg.in/natefinch/lumberjack.v2"
)

// NewEventLog returns a rotating file writer for the event log.
func NewEventLog(path string) *lumberjack.Logger {
    return &lumberjack.Logger{
        Filename:   path,
        MaxSize:    10, // megabytes
        MaxBackups: 5,
        LocalTime:  true,
    }
}

// Consumer reads HotelEvents from the queue and appends one line per
// event to an audit log.
type Consumer struct {
    url   string
    queue string
    out   *logrus.Logger
    log   logrus.FieldLogger
}

// NewConsumer writes consumed events to w; diagnostics go to log.
func NewConsumer(url, queue string, w io.Writer, log logrus.FieldLogger) *Consumer {
    out := logrus.New()
    out.SetOutput(w)
    out.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
    return &Consumer{url: url, queue: queue, out: out, log: log}
}

// Run connects, consumes and reconnects with exponential backoff until
// ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.WithError(err).WithField("retry_in", backoff.String()).Warn("event consumer: dial failed")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.WithError(err).Warn("event consumer: consume loop ended, reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
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

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.WithError(err).Warn("event consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.Handle(d.Body); err != nil {
                c.log.WithError(err).Warn("event consumer: handle message failed")
                _ = d.Nack(false, false) // reject without requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and writes its audit line.
func (c *Consumer) Handle(body []byte) error {
    var ev HotelEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    c.out.WithFields(EventFields(ev)).Info(ev.Type)
    return nil
}

// EventFields flattens an event into log fields, leaving out zero IDs.
func EventFields(ev HotelEvent) logrus.Fields {
    f := logrus.Fields{"event_id": ev.ID, "occurred_at": ev.OccurredAt.Format(time.RFC3339)}
    for k, v := range map[string]int64{
        "booking_id":  ev.BookingID,
        "room_id":     ev.RoomID,
        "customer_id": ev.CustomerID,
        "payment_id":  ev.PaymentID,
    } {
        if v != 0 {
            f[k] = v
        }
    }
    for k, v := range ev.Data {
        f[k] = v
    }
    return f
}
