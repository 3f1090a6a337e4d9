package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names an administrative change made through the gateway.
type Action string

const (
	ActionUserCreated  Action = "user_created"
	ActionUserUpdated  Action = "user_updated"
	ActionUserDeleted  Action = "user_deleted"
	ActionUserPromoted Action = "user_promoted"
	ActionUserDemoted  Action = "user_demoted"
)

// Event records who did what to which user. Outcome is the backend status
// code, so refused attempts are kept alongside successful ones.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Action       Action    `json:"action"`
	ActorID      string    `json:"actor_id"`
	TargetUserID string    `json:"target_user_id,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	ClientIP     string    `json:"client_ip,omitempty"`
	Device       string    `json:"device,omitempty"`
	Outcome      int       `json:"outcome"`
}

// Succeeded reports whether the backend accepted the change.
func (e Event) Succeeded() bool {
	return e.Outcome >= 200 && e.Outcome < 300
}
