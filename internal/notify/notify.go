// Package notify hands notification intents to the delivery layer without
// blocking the operation that produced them.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oggyb/vibeu-engine/internal/db"
	"github.com/oggyb/vibeu-engine/internal/domain"
	"github.com/oggyb/vibeu-engine/internal/metrics"
)

// Intent is one notification to be delivered to UserID.
type Intent struct {
	UserID    string
	Type      domain.NotificationType
	Payload   map[string]any
	CreatedAt time.Time
}

// Notifier accepts intents fire-and-forget. Implementations never block the
// caller on delivery and never report delivery failures back.
type Notifier interface {
	Notify(ctx context.Context, in Intent)
}

// Sink performs the actual delivery.
type Sink interface {
	Deliver(ctx context.Context, in Intent) error
}

// Dispatcher queues intents and delivers them from a single worker.
// A full queue drops the intent; sink errors are logged and swallowed.
type Dispatcher struct {
	sink    Sink
	log     *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Intent
	done   chan struct{}
}

// NewDispatcher starts the delivery worker. Call Close to drain and stop it.
func NewDispatcher(sink Sink, queueSize int, log *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{
		sink:    sink,
		log:     log.With("component", "notify"),
		timeout: 5 * time.Second,
		queue:   make(chan Intent, queueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) Notify(_ context.Context, in Intent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(in, "dispatcher closed")
		return
	}
	select {
	case d.queue <- in:
	default:
		d.drop(in, "queue full")
	}
}

func (d *Dispatcher) drop(in Intent, reason string) {
	metrics.NotificationsDropped.Inc()
	d.log.Warn("notification dropped",
		"reason", reason,
		"user_id", in.UserID,
		"type", in.Type,
	)
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for in := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.sink.Deliver(ctx, in)
		cancel()
		if err != nil {
			metrics.NotificationsDelivered.WithLabelValues("error").Inc()
			d.log.Warn("notification delivery failed",
				"user_id", in.UserID,
				"type", in.Type,
				"error", err,
			)
			continue
		}
		metrics.NotificationsDelivered.WithLabelValues("ok").Inc()
	}
}

// Close stops accepting intents, drains the queue and waits for the worker.
// It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}

// NotificationWriter is the persistence DBSink writes through.
type NotificationWriter interface {
	Create(ctx context.Context, n *db.Notification) error
}

// DBSink persists intents as notification rows for the push layer to pick up.
type DBSink struct {
	repo  NotificationWriter
	newID func() string
}

func NewDBSink(repo NotificationWriter, newID func() string) *DBSink {
	return &DBSink{repo: repo, newID: newID}
}

func (s *DBSink) Deliver(ctx context.Context, in Intent) error {
	payload, err := json.Marshal(in.Payload)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}
	created := in.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return s.repo.Create(ctx, &db.Notification{
		ID:        s.newID(),
		UserID:    in.UserID,
		Type:      string(in.Type),
		Payload:   string(payload),
		CreatedAt: created,
	})
}

// Nop discards every intent.
type Nop struct{}

func (Nop) Notify(context.Context, Intent) {}
