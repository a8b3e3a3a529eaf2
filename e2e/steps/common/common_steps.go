package common

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the scenario state common steps need.
type TestContext interface {
	GET(path string) error
	POSTRaw(path, body string) error
	StatusCode() int
	ResponseField(field string) (any, error)
}

// RegisterSteps registers background and generic assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}
	ctx.Step(`^the scoring API is running$`, steps.apiIsRunning)
	ctx.Step(`^I send the raw body "([^"]*)" to "([^"]*)"$`, steps.sendRaw)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response code field should be (\d+)$`, steps.codeFieldShouldBe)
	ctx.Step(`^the error should be "([^"]*)"$`, steps.errorShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) apiIsRunning() error {
	if err := s.tc.GET("/healthz"); err != nil {
		return err
	}
	if s.tc.StatusCode() != 200 {
		return fmt.Errorf("health check returned %d", s.tc.StatusCode())
	}
	return nil
}

func (s *commonSteps) sendRaw(body, path string) error {
	return s.tc.POSTRaw(path, body)
}

func (s *commonSteps) statusShouldBe(expected int) error {
	if got := s.tc.StatusCode(); got != expected {
		return fmt.Errorf("expected status %d, got %d", expected, got)
	}
	return nil
}

func (s *commonSteps) codeFieldShouldBe(expected int) error {
	v, err := s.tc.ResponseField("code")
	if err != nil {
		return err
	}
	got, ok := v.(float64)
	if !ok || int(got) != expected {
		return fmt.Errorf("expected code %d, got %v", expected, v)
	}
	return nil
}

func (s *commonSteps) errorShouldBe(expected string) error {
	v, err := s.tc.ResponseField("error")
	if err != nil {
		return err
	}
	if got, _ := v.(string); got != expected {
		return fmt.Errorf("expected error %s, got %v", strconv.Quote(expected), v)
	}
	return nil
}
