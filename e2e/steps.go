package e2e

import (
	"github.com/cucumber/godog"

	"github.com/agenghermawan/clandestineproject/e2e/steps/common"
	"github.com/agenghermawan/clandestineproject/e2e/steps/gateway"
	"github.com/agenghermawan/clandestineproject/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	gateway.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
