package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Publisher captures audit events. By default Emit writes straight to the
// store; WithAsync puts a bounded queue in front of it that a Worker drains.
// Once the worker has stopped, Emit writes synchronously again.
type Publisher struct {
	store  Store
	logger *slog.Logger
	queue  chan Event
	now    func() time.Time

	mu     sync.RWMutex
	sealed bool
}

type PublisherOption func(*Publisher)

// WithAsync queues up to size events for a Worker. A full queue drops the
// event and logs it rather than blocking the request.
func WithAsync(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.queue = make(chan Event, size)
		}
	}
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store Store, logger *slog.Logger, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps the event and hands it to the store or queue.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	if p.queue == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	if p.sealed {
		p.mu.RUnlock()
		return p.store.Append(ctx, event)
	}
	defer p.mu.RUnlock()
	select {
	case p.queue <- event:
	default:
		p.logger.WarnContext(ctx, "audit queue full, dropping event",
			"action", event.Action,
			"request_id", event.RequestID,
		)
	}
	return nil
}

// seal stops queueing. Emits already holding the read lock finish their
// send first, so the worker's final drain sees them.
func (p *Publisher) seal() {
	p.mu.Lock()
	p.sealed = true
	p.mu.Unlock()
}

// Recent lists the newest events first.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Worker returns the drain loop for an async publisher, or nil when the
// publisher is synchronous.
func (p *Publisher) Worker() *Worker {
	if p.queue == nil {
		return nil
	}
	w := NewWorker(p.store, p.queue, p.logger)
	w.onStop = p.seal
	return w
}
