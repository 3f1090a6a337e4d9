// Package confirm lets any action pause on a yes/no question that some
// other part of the program answers. A Host owns a single pending slot; the
// caller parks on Request until Deliver, Close, or its context resolves it.
package confirm

import (
	"context"
	"fmt"
	"sync"

	"github.com/agenghermawan/clandestineproject/pkg/platform/sentinel"
)

var (
	// ErrBusy is returned when a question is already waiting for an answer.
	ErrBusy = fmt.Errorf("confirm: %w", sentinel.ErrBusy)
	// ErrClosed is returned once the host has been torn down.
	ErrClosed = fmt.Errorf("confirm: %w", sentinel.ErrClosed)
)

// Listener is told about every change to the visible prompt. It runs outside
// the host lock and must not block.
type Listener func(Prompt)

type pending struct {
	opts  Options
	reply chan bool
}

// Host holds at most one pending confirmation.
type Host struct {
	mu       sync.Mutex
	pending  *pending
	closed   bool
	listener Listener
}

// Option configures a Host.
type Option func(*Host)

// WithListener registers the surface that renders prompts.
func WithListener(l Listener) Option {
	return func(h *Host) {
		h.listener = l
	}
}

// NewHost returns an idle host with nothing pending.
func NewHost(opts ...Option) *Host {
	h := &Host{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Request shows opts and blocks until a decision arrives. It returns true only
// when the user accepted. Cancel, dismiss, teardown, and context cancellation
// all yield false. The only errors are ErrBusy and ErrClosed, returned before
// anything is shown.
func (h *Host) Request(ctx context.Context, opts Options) (bool, error) {
	opts = opts.WithDefaults()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false, ErrClosed
	}
	if h.pending != nil {
		h.mu.Unlock()
		return false, ErrBusy
	}
	p := &pending{opts: opts, reply: make(chan bool, 1)}
	h.pending = p
	h.mu.Unlock()

	h.notify(Prompt{Options: opts, Open: true})

	select {
	case ok := <-p.reply:
		return ok, nil
	case <-ctx.Done():
	}

	h.mu.Lock()
	if h.pending != p {
		// Deliver or Close got here first; its answer is already buffered.
		h.mu.Unlock()
		return <-p.reply, nil
	}
	h.pending = nil
	h.mu.Unlock()

	h.notify(Prompt{Options: opts, Open: false})
	return false, nil
}

// Deliver resolves the pending confirmation with ok. With nothing pending it
// does nothing.
func (h *Host) Deliver(ok bool) {
	h.mu.Lock()
	p := h.pending
	if p == nil {
		h.mu.Unlock()
		return
	}
	h.pending = nil
	p.reply <- ok
	h.mu.Unlock()

	h.notify(Prompt{Options: p.opts, Open: false})
}

// Accept is Deliver(true).
func (h *Host) Accept() { h.Deliver(true) }

// Cancel is Deliver(false).
func (h *Host) Cancel() { h.Deliver(false) }

// Dismiss handles escape or a click outside the dialog. It is a cancel.
func (h *Host) Dismiss() { h.Deliver(false) }

// Current reports what should be on screen right now.
func (h *Host) Current() Prompt {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pending == nil {
		return Prompt{}
	}
	return Prompt{Options: h.pending.opts, Open: true}
}

// Pending reports whether a caller is waiting.
func (h *Host) Pending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending != nil
}

// Close tears the host down. A waiting caller receives false and every later
// Request fails with ErrClosed. Close is idempotent.
func (h *Host) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	p := h.pending
	h.pending = nil
	if p != nil {
		p.reply <- false
	}
	h.mu.Unlock()

	if p != nil {
		h.notify(Prompt{Options: p.opts, Open: false})
	}
}

func (h *Host) notify(p Prompt) {
	if h.listener != nil {
		h.listener(p)
	}
}
