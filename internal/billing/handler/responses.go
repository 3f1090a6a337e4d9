package handler

import (
	"encoding/json"

	"github.com/agenghermawan/clandestineproject/internal/billing"
)

// OverviewResponse is the body of GET /api/my-overview.
type OverviewResponse struct {
	Payments []PaymentView    `json:"payments"`
	Plan     json.RawMessage  `json:"plan"`
	Summary  *billing.Summary `json:"summary"`
}

// PaymentView is a backend payment record with the derived checkout hints.
type PaymentView struct {
	Record              json.RawMessage `json:"record"`
	ForceRegisterDomain bool            `json:"force_register_domain"`
	DomainLimit         int             `json:"domain_limit"`
}
