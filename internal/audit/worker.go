package audit

import (
	"context"
	"log/slog"
	"time"
)

const drainTimeout = 5 * time.Second

// Worker consumes audit events from a channel and persists them. A failed
// append is logged and skipped so one bad write cannot stall the queue.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
	onStop func()
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run persists events until ctx is cancelled, then flushes whatever is
// still queued. A worker from Publisher.Worker switches its publisher to
// synchronous writes before the final flush.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if w.onStop != nil {
				w.onStop()
			}
			w.drain()
			return nil
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.append(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", event.Action,
			"event_id", event.ID,
			"error", err,
		)
	}
}
