package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared e2e context these steps need.
type TestContext interface {
	GET(path string) error
	POST(path string, body interface{}) error
	SetToken(token string)
	SetClientIP(ip string)
	GetResponseField(field string) (interface{}, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastResponseHeader(name string) string
}

// RegisterSteps registers the generic request and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I am not logged in$`, steps.notLoggedIn)
	ctx.Step(`^I am logged in with token "([^"]*)"$`, steps.loggedInWithToken)
	ctx.Step(`^my client IP is "([^"]*)"$`, steps.clientIPIs)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^I POST to "([^"]*)" with body:$`, steps.postWithBody)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response should contain field "([^"]*)"$`, steps.shouldContainField)
	ctx.Step(`^the response header "([^"]*)" should be set$`, steps.headerShouldBeSet)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) notLoggedIn(ctx context.Context) error {
	s.tc.SetToken("")
	return nil
}

func (s *commonSteps) loggedInWithToken(ctx context.Context, token string) error {
	s.tc.SetToken(token)
	return nil
}

func (s *commonSteps) clientIPIs(ctx context.Context, ip string) error {
	s.tc.SetClientIP(ip)
	return nil
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path)
}

func (s *commonSteps) postWithBody(ctx context.Context, path string, body *godog.DocString) error {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(body.Content), &payload); err != nil {
		return fmt.Errorf("step body is not JSON: %w", err)
	}
	return s.tc.POST(path, payload)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.GetLastResponseStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *commonSteps) fieldShouldBe(ctx context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s=%q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) shouldContainField(ctx context.Context, field string) error {
	_, err := s.tc.GetResponseField(field)
	return err
}

func (s *commonSteps) headerShouldBeSet(ctx context.Context, name string) error {
	if strings.TrimSpace(s.tc.GetLastResponseHeader(name)) == "" {
		return fmt.Errorf("header %s missing", name)
	}
	return nil
}
