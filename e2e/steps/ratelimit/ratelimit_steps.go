package ratelimit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared e2e context these steps need.
type TestContext interface {
	POST(path string, body interface{}) error
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(name string) string
}

// RegisterSteps registers the contact form throttling steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I submit the contact form (\d+) times$`, steps.submitContactNTimes)
	ctx.Step(`^the (\d+)(?:st|nd|rd|th) submission should return (\d+)$`, steps.nthSubmissionShouldReturn)
	ctx.Step(`^the response should tell me when to retry$`, steps.responseShouldCarryRetryAfter)
}

type ratelimitSteps struct {
	tc       TestContext
	statuses []int
}

func (s *ratelimitSteps) submitContactNTimes(ctx context.Context, n int) error {
	s.statuses = s.statuses[:0]
	form := map[string]interface{}{
		"name":    "E2E",
		"email":   "e2e@example.com",
		"message": "hello from the e2e suite",
		"captcha": "e2e",
	}
	for i := 0; i < n; i++ {
		if err := s.tc.POST("/api/contact", form); err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *ratelimitSteps) nthSubmissionShouldReturn(ctx context.Context, n, want int) error {
	if n < 1 || n > len(s.statuses) {
		return fmt.Errorf("only %d submissions were made", len(s.statuses))
	}
	if got := s.statuses[n-1]; got != want {
		return fmt.Errorf("submission %d: expected %d, got %d", n, want, got)
	}
	return nil
}

func (s *ratelimitSteps) responseShouldCarryRetryAfter(ctx context.Context) error {
	header := s.tc.GetLastResponseHeader("Retry-After")
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 1 {
		return fmt.Errorf("Retry-After %q is not a positive number of seconds", header)
	}
	v, err := s.tc.GetResponseField("retry_after")
	if err != nil {
		return err
	}
	if n, ok := v.(float64); !ok || int(n) != secs {
		return fmt.Errorf("retry_after %v does not match Retry-After %d", v, secs)
	}
	return nil
}
