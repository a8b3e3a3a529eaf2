package method

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/cucumber/godog"
)

const defaultAccount = "horns&hoofs"

// TestContext is the slice of the scenario state method steps need.
type TestContext interface {
	POST(path string, body any) error
	ResponseField(field string) (any, error)
	UserToken(account, login string) string
	AdminToken() string
}

// RegisterSteps registers steps that call the /method endpoint.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &methodSteps{tc: tc}
	ctx.Step(`^I call "([^"]*)" as user "([^"]*)" with arguments:$`, steps.callAsUser)
	ctx.Step(`^I call "([^"]*)" as admin with arguments:$`, steps.callAsAdmin)
	ctx.Step(`^I call "([^"]*)" as user "([^"]*)" with token "([^"]*)"$`, steps.callWithToken)
	ctx.Step(`^the score should be ([0-9.]+)$`, steps.scoreShouldBe)
	ctx.Step(`^client "([^"]*)" should have interests:$`, steps.clientShouldHave)
}

type methodSteps struct {
	tc TestContext
}

func (s *methodSteps) call(login, token, method string, args map[string]any) error {
	return s.tc.POST("/method", map[string]any{
		"account":   defaultAccount,
		"login":     login,
		"token":     token,
		"method":    method,
		"arguments": args,
	})
}

func parseArguments(doc *godog.DocString) (map[string]any, error) {
	args := map[string]any{}
	if doc == nil || doc.Content == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(doc.Content), &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return args, nil
}

func (s *methodSteps) callAsUser(method, login string, doc *godog.DocString) error {
	args, err := parseArguments(doc)
	if err != nil {
		return err
	}
	return s.call(login, s.tc.UserToken(defaultAccount, login), method, args)
}

func (s *methodSteps) callAsAdmin(method string, doc *godog.DocString) error {
	args, err := parseArguments(doc)
	if err != nil {
		return err
	}
	return s.call("admin", s.tc.AdminToken(), method, args)
}

func (s *methodSteps) callWithToken(method, login, token string) error {
	return s.call(login, token, method, map[string]any{})
}

func (s *methodSteps) scoreShouldBe(expected string) error {
	want, err := strconv.ParseFloat(expected, 64)
	if err != nil {
		return err
	}
	v, err := s.tc.ResponseField("response")
	if err != nil {
		return err
	}
	body, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("response is not an object: %v", v)
	}
	got, ok := body["score"].(float64)
	if !ok || math.Abs(got-want) > 1e-9 {
		return fmt.Errorf("expected score %v, got %v", want, body["score"])
	}
	return nil
}

func (s *methodSteps) clientShouldHave(id string, doc *godog.DocString) error {
	var want []any
	if err := json.Unmarshal([]byte(doc.Content), &want); err != nil {
		return fmt.Errorf("interests must be a JSON list: %w", err)
	}
	v, err := s.tc.ResponseField("response")
	if err != nil {
		return err
	}
	body, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("response is not an object: %v", v)
	}
	got, ok := body[id]
	if !ok {
		return fmt.Errorf("client %s missing from response %v", id, body)
	}
	if !reflect.DeepEqual(got, want) {
		return fmt.Errorf("client %s: expected %v, got %v", id, want, got)
	}
	return nil
}
