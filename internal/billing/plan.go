// Package billing interprets the plan and payment records the backend
// returns, so clients get remaining capacity without redoing the math.
package billing

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// BypassPaymentID marks payments that must go straight to domain
// registration.
const BypassPaymentID = "x9BG0DgLaT6HY2RP"

// UnlimitedDomains is the plan domain value for no registration cap.
const UnlimitedDomains = "unlimited"

// MaxDomainLimit caps numeric allowances so oversized values cannot overflow
// int. Real plans are orders of magnitude below it.
const MaxDomainLimit = 1_000_000

// DomainAllowance is a plan's domain cap. The backend sends either a number
// or the string "unlimited", so both decode into the same text form.
type DomainAllowance string

func (d *DomainAllowance) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = DomainAllowance(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = DomainAllowance(n.String())
	return nil
}

// Unlimited reports the "unlimited" allowance.
func (d DomainAllowance) Unlimited() bool {
	return string(d) == UnlimitedDomains
}

// Limit is the numeric cap, 0 when absent, unparsable or negative, and at
// most MaxDomainLimit.
func (d DomainAllowance) Limit() int {
	n, err := strconv.ParseFloat(string(d), 64)
	if err != nil || math.IsNaN(n) || n < 0 {
		return 0
	}
	if n >= MaxDomainLimit {
		return MaxDomainLimit
	}
	return int(n)
}

// Plan is the subscription record behind GET /my-plan.
type Plan struct {
	Plan             string          `json:"plan,omitempty"`
	Domain           DomainAllowance `json:"domain"`
	Expired          string          `json:"expired,omitempty"`
	RegisteredDomain []string        `json:"registered_domain"`
}

// ExpiresAt parses the plan expiry. ok is false when it is missing or not a
// recognizable timestamp.
func (p Plan) ExpiresAt() (t time.Time, ok bool) {
	if p.Expired == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, p.Expired); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Summary is the derived view of a plan at a point in time.
type Summary struct {
	Unlimited  bool       `json:"unlimited"`
	Expired    bool       `json:"expired"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Limit      int        `json:"limit"`
	Registered int        `json:"registered"`
	// Remaining is -1 for unlimited plans and never below zero otherwise.
	Remaining int `json:"remaining"`
}

// Summarize derives capacity and expiry for plan as of now.
func Summarize(plan Plan, now time.Time) Summary {
	s := Summary{
		Unlimited:  plan.Domain.Unlimited(),
		Registered: len(plan.RegisteredDomain),
	}
	if exp, ok := plan.ExpiresAt(); ok {
		s.ExpiresAt = &exp
		s.Expired = exp.Before(now)
	}
	if s.Unlimited {
		s.Limit = -1
		s.Remaining = -1
		return s
	}
	s.Limit = plan.Domain.Limit()
	s.Remaining = max(s.Limit-s.Registered, 0)
	return s
}
