package e2e

import (
	"github.com/cucumber/godog"

	"scoreapi/e2e/steps/common"
	"scoreapi/e2e/steps/method"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register method call steps
	method.RegisterSteps(ctx, tc)
}
