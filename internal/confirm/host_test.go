package confirm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

// promptRecorder captures listener events so tests can wait for the dialog to
// appear before answering it.
type promptRecorder struct {
	events chan Prompt
}

func newPromptRecorder() *promptRecorder {
	return &promptRecorder{events: make(chan Prompt, 16)}
}

func (r *promptRecorder) listen(p Prompt) {
	r.events <- p
}

func (r *promptRecorder) next(t *testing.T) Prompt {
	t.Helper()
	select {
	case p := <-r.events:
		return p
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for prompt event")
		return Prompt{}
	}
}

type result struct {
	ok  bool
	err error
}

func requestAsync(ctx context.Context, h *Host, opts Options) <-chan result {
	out := make(chan result, 1)
	go func() {
		ok, err := h.Request(ctx, opts)
		out <- result{ok: ok, err: err}
	}()
	return out
}

func await(t *testing.T, ch <-chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for confirmation outcome")
		return result{}
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	got := Options{}.WithDefaults()

	assert.Equal(t, "Are you sure?", got.Title)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, "Yes", got.ConfirmLabel)
	assert.Equal(t, "Cancel", got.CancelLabel)
	assert.Equal(t, ToneDanger, got.Tone)

	custom := Options{Title: "Make Admin?", ConfirmLabel: "Yes, Make Admin", Tone: TonePrimary}.WithDefaults()
	assert.Equal(t, "Make Admin?", custom.Title)
	assert.Equal(t, "Yes, Make Admin", custom.ConfirmLabel)
	assert.Equal(t, "Cancel", custom.CancelLabel)
	assert.Equal(t, TonePrimary, custom.Tone)

	assert.Equal(t, ToneDanger, Options{Tone: "loud"}.WithDefaults().Tone)
}

func TestRequestAccept(t *testing.T) {
	rec := newPromptRecorder()
	h := NewHost(WithListener(rec.listen))

	out := requestAsync(context.Background(), h, Options{Title: "Proceed?"})

	shown := rec.next(t)
	assert.True(t, shown.Open)
	assert.Equal(t, "Proceed?", shown.Title)
	assert.Equal(t, "Yes", shown.ConfirmLabel)
	assert.True(t, h.Current().Open)

	h.Accept()

	r := await(t, out)
	require.NoError(t, r.err)
	assert.True(t, r.ok)
	assert.False(t, rec.next(t).Open)
	assert.False(t, h.Current().Open)
	assert.False(t, h.Pending())
}

func TestRequestCancelAndDismissResolveFalse(t *testing.T) {
	for name, answer := range map[string]func(*Host){
		"cancel":  (*Host).Cancel,
		"dismiss": (*Host).Dismiss,
	} {
		t.Run(name, func(t *testing.T) {
			rec := newPromptRecorder()
			h := NewHost(WithListener(rec.listen))

			out := requestAsync(context.Background(), h, Options{})
			rec.next(t)
			answer(h)

			r := await(t, out)
			require.NoError(t, r.err)
			assert.False(t, r.ok)
			assert.False(t, h.Pending())
		})
	}
}

func TestDeliverWithNothingPendingIsNoop(t *testing.T) {
	rec := newPromptRecorder()
	h := NewHost(WithListener(rec.listen))

	assert.NotPanics(t, func() {
		h.Deliver(true)
		h.Deliver(false)
	})
	assert.Empty(t, rec.events)
	assert.False(t, h.Current().Open)
}

func TestSecondDeliverDoesNotLeakIntoNextRequest(t *testing.T) {
	rec := newPromptRecorder()
	h := NewHost(WithListener(rec.listen))

	first := requestAsync(context.Background(), h, Options{})
	rec.next(t)
	h.Accept()
	h.Accept()
	assert.True(t, await(t, first).ok)
	rec.next(t)

	second := requestAsync(context.Background(), h, Options{})
	rec.next(t)
	h.Cancel()
	assert.False(t, await(t, second).ok)
}

func TestRequestWhilePendingIsBusy(t *testing.T) {
	rec := newPromptRecorder()
	h := NewHost(WithListener(rec.listen))

	first := requestAsync(context.Background(), h, Options{Title: "first"})
	rec.next(t)

	ok, err := h.Request(context.Background(), Options{Title: "second"})
	require.ErrorIs(t, err, ErrBusy)
	assert.False(t, ok)
	assert.Equal(t, "first", h.Current().Title)

	h.Accept()
	assert.True(t, await(t, first).ok)
}

func TestContextCancelResolvesFalseAndFreesSlot(t *testing.T) {
	rec := newPromptRecorder()
	h := NewHost(WithListener(rec.listen))
	ctx, cancel := context.WithCancel(context.Background())

	out := requestAsync(ctx, h, Options{})
	rec.next(t)
	cancel()

	r := await(t, out)
	require.NoError(t, r.err)
	assert.False(t, r.ok)
	assert.False(t, rec.next(t).Open)
	assert.False(t, h.Pending())

	h.Accept()
	assert.Empty(t, rec.events)
}

func TestCloseResolvesPendingAndRejectsLaterRequests(t *testing.T) {
	rec := newPromptRecorder()
	h := NewHost(WithListener(rec.listen))

	out := requestAsync(context.Background(), h, Options{})
	rec.next(t)
	h.Close()

	r := await(t, out)
	require.NoError(t, r.err)
	assert.False(t, r.ok)

	ok, err := h.Request(context.Background(), Options{})
	require.ErrorIs(t, err, ErrClosed)
	assert.False(t, ok)

	assert.NotPanics(t, h.Close)
}

func TestConcurrentDeliverResolvesExactlyOnce(t *testing.T) {
	rec := newPromptRecorder()
	h := NewHost(WithListener(rec.listen))

	out := requestAsync(context.Background(), h, Options{})
	rec.next(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(accept bool) {
			defer wg.Done()
			h.Deliver(accept)
		}(i%2 == 0)
	}
	wg.Wait()

	await(t, out)
	assert.False(t, h.Pending())
	closed := 0
	for len(rec.events) > 0 {
		if !(<-rec.events).Open {
			closed++
		}
	}
	assert.Equal(t, 1, closed)
}

func TestPresetOptions(t *testing.T) {
	del := DeleteUser("alice")
	assert.Equal(t, "Delete User", del.Title)
	assert.Equal(t, "Delete alice? This action cannot be undone.", del.Description)
	assert.Equal(t, "Delete", del.ConfirmLabel)
	assert.Equal(t, ToneDanger, del.Tone)

	assert.Equal(t, TonePrimary, MakeAdmin().Tone)
	assert.Equal(t, "Yes, Make Admin", MakeAdmin().ConfirmLabel)
	assert.Equal(t, "Yes, Remove", RemoveAdmin().ConfirmLabel)
	assert.Equal(t, ToneDanger, RemoveAdmin().Tone)
}
