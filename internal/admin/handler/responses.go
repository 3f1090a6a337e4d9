package handler

import (
	"encoding/json"

	"github.com/agenghermawan/clandestineproject/internal/audit"
)

// RoleChangeResponse is written after a successful make-admin or
// remove-admin call.
type RoleChangeResponse struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type AuditListResponse struct {
	Data []audit.Event `json:"data"`
}
