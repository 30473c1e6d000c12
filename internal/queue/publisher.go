package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
    "github.com/sony/gobreaker"
)

// ErrBufferFull is returned by Notify when the publish buffer is full
// and the event was dropped.
var ErrBufferFull = errors.New("event buffer full")

// PublisherConfig describes the broker connection and the breaker
// guarding it.
type PublisherConfig struct {
    URL          string        // amqp URL
    Queue        string        // durable queue the events are routed to
    MaxFailures  uint32        // consecutive failures that open the breaker
    OpenTimeout  time.Duration // how long the breaker stays open
    DialTimeout  time.Duration
    BufferSize   int
}

// Publisher sends HotelEvents to RabbitMQ.  Notify only enqueues; Run
// drains the buffer and publishes each event through a circuit breaker
// so an unreachable broker costs one fast failure per event instead of
// a dial timeout.
type Publisher struct {
    cfg    PublisherConfig
    cb     *gobreaker.CircuitBreaker
    log    logrus.FieldLogger
    events chan HotelEvent
}

// NewPublisher builds a publisher; call Run to start delivery.
func NewPublisher(cfg PublisherConfig, log logrus.FieldLogger) *Publisher {
    if cfg.MaxFailures == 0 {
        cfg.MaxFailures = 5
    }
    if cfg.OpenTimeout <= 0 {
        cfg.OpenTimeout = 30 * time.Second
    }
    if cfg.DialTimeout <= 0 {
        cfg.DialTimeout = 5 * time.Second
    }
    if cfg.BufferSize <= 0 {
        cfg.BufferSize = 256
    }
    p := &Publisher{cfg: cfg, log: log, events: make(chan HotelEvent, cfg.BufferSize)}
    p.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
        Name:    "rabbitmq-publish",
        Timeout: cfg.OpenTimeout,
        ReadyToTrip: func(counts gobreaker.Counts) bool {
            return counts.ConsecutiveFailures >= cfg.MaxFailures
        },
        OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
            log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
                Warn("circuit breaker state changed")
        },
    })
    return p
}

// Notify queues ev for publishing without blocking.
func (p *Publisher) Notify(_ context.Context, ev HotelEvent) error {
    select {
    case p.events <- ev:
        return nil
    default:
        return ErrBufferFull
    }
}

// Run publishes queued events until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
    for {
        select {
        case <-ctx.Done():
            return
        case ev := <-p.events:
            if err := p.Publish(ctx, ev); err != nil {
                entry := p.log.WithFields(logrus.Fields{"event": ev.Type, "event_id": ev.ID}).WithError(err)
                if errors.Is(err, gobreaker.ErrOpenState) {
                    entry.Warn("broker unavailable, event dropped")
                } else {
                    entry.Error("publish failed")
                }
            }
        }
    }
}

// Publish sends one event synchronously through the breaker.
func (p *Publisher) Publish(ctx context.Context, ev HotelEvent) error {
    _, err := p.cb.Execute(func() (interface{}, error) {
        return nil, p.publish(ctx, ev)
    })
    return err
}

// State exposes the breaker state.
func (p *Publisher) State() gobreaker.State { return p.cb.State() }

func (p *Publisher) publish(ctx context.Context, ev HotelEvent) error {
    conn, err := amqp.DialConfig(p.cfg.URL, amqp.Config{Dial: amqp.DefaultDial(p.cfg.DialTimeout)})
    if err != nil {
        return fmt.Errorf("dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    // durable so messages survive broker restarts
    if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    ev.OccurredAt,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, pub); err != nil {
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}
