package users

import (
	"sync"

	"github.com/agenghermawan/clandestineproject/internal/admin"
	"github.com/agenghermawan/clandestineproject/internal/confirm"
)

// Variant names which modal is showing for a user.
type Variant string

const VariantDetail Variant = "detail"

// Target is what the user modal is showing.
type Target struct {
	User    admin.User
	Variant Variant
}

// modalSlot is the user modal's state. Confirmation commands hide and
// restore it from their own goroutine, so it is guarded separately from
// the rest of the model.
type modalSlot struct {
	mu     sync.Mutex
	open   bool
	target Target
}

var _ confirm.ModalOwner[Target] = (*modalSlot)(nil)

func (s *modalSlot) Open(t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.target = t
}

func (s *modalSlot) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.target = Target{}
}

// Current returns the showing target, if any.
func (s *modalSlot) Current() (Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target, s.open
}

func (s *modalSlot) Snapshot() confirm.SuspendedModal[Target] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return confirm.SuspendedModal[Target]{WasOpen: s.open, Target: s.target}
}

func (s *modalSlot) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *modalSlot) Restore(saved confirm.SuspendedModal[Target]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = saved.WasOpen
	s.target = saved.Target
}
