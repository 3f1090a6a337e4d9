package models

import (
	"math"
	"time"
)

// Rule is a named request allowance over a sliding window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// RetryAfter returns whole seconds until the window frees a slot, at least 1.
func (r *Result) RetryAfter(now time.Time) int {
	secs := int(math.Ceil(r.ResetAt.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// ExceededResponse is the body written with a 429.
type ExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}
