package confirm

import "context"

// SuspendedModal remembers whether a modal was showing and what it was
// showing, so a cancelled confirmation can put it back exactly.
type SuspendedModal[T any] struct {
	WasOpen bool
	Target  T
}

// ModalOwner is implemented by whatever owns the modal a confirmation is
// raised from. T identifies the record and modal variant.
type ModalOwner[T any] interface {
	Snapshot() SuspendedModal[T]
	Hide()
	Restore(SuspendedModal[T])
}

// RequestFromOwnedModal hides the owner's modal while the question is asked.
// If the answer is no and the modal was open, it is restored to the captured
// target. On yes the snapshot is dropped and the caller carries on.
func RequestFromOwnedModal[T any](ctx context.Context, h *Host, owner ModalOwner[T], opts Options) (bool, error) {
	saved := owner.Snapshot()
	owner.Hide()

	ok, err := h.Request(ctx, opts)
	if !ok && saved.WasOpen {
		owner.Restore(saved)
	}
	return ok, err
}
