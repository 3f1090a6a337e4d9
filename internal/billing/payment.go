package billing

// Payment is one entry of GET /my-payment. Only the fields the gateway
// reasons about are typed; the rest travel in the raw body.
type Payment struct {
	ID      string          `json:"id"`
	Plan    string          `json:"plan"`
	Domain  DomainAllowance `json:"domain"`
	Payment *Reference      `json:"payment,omitempty"`
	Invoice *Reference      `json:"invoice,omitempty"`
}

// Reference points at a payment-provider object.
type Reference struct {
	ID string `json:"Id"`
}

// ForceRegisterDomain reports whether the payment skips checkout and goes
// straight to domain registration.
func (p Payment) ForceRegisterDomain() bool {
	return p.Payment != nil && p.Payment.ID == BypassPaymentID
}

// DomainLimit is the number of domains this payment covers, at least one.
func (p Payment) DomainLimit() int {
	if n := p.Domain.Limit(); n > 0 {
		return n
	}
	return 1
}
