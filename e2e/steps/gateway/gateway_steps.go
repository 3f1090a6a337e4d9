package gateway

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared e2e context these steps need.
type TestContext interface {
	GET(path string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers steps about which routes require a session.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &gatewaySteps{tc: tc}

	ctx.Step(`^every member route should answer 401$`, steps.memberRoutesRequireSession)
}

type gatewaySteps struct {
	tc TestContext
}

var memberRoutes = []string{
	"/api/leaks?q=example.com",
	"/api/leaks/get-limit",
	"/api/my-payment",
	"/api/my-plan",
	"/api/my-overview",
	"/api/special-one/stats",
}

func (s *gatewaySteps) memberRoutesRequireSession(ctx context.Context) error {
	for _, path := range memberRoutes {
		if err := s.tc.GET(path); err != nil {
			return err
		}
		if got := s.tc.GetLastResponseStatus(); got != 401 {
			return fmt.Errorf("GET %s: expected 401, got %d: %s", path, got, s.tc.GetLastResponseBody())
		}
	}
	return nil
}
