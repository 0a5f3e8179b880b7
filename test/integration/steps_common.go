//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/tidwall/gjson"

	"github.com/doodlesbykumbi/seek-in-go/pkg/server/endpoints"
)

var placeholder = regexp.MustCompile(`\{([^{}"]+)\}`)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	server       *ServerInstance
	serverConfig ServerConfig
	response     *http.Response
	responseBody []byte
	authToken    string
	users        map[string]string // login -> password
	people       map[string]uint   // login -> person id
	remembered   map[string]string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:           tc,
		serverConfig: DefaultServerConfig(),
		users:        make(map[string]string),
		people:       make(map[string]uint),
		remembered:   make(map[string]string),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, endpoints.CleanupTestData(s.tc.DB)
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if s.server != nil {
			s.server.Stop()
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^users may create programmes$`, s.usersMayCreateProgrammes)
	sc.Step(`^programmes are disabled$`, s.programmesAreDisabled)
	sc.Step(`^a SEEK server is running$`, s.aSEEKServerIsRunning)
	sc.Step(`^a user "([^"]*)" exists with password "([^"]*)"$`, s.aUserExists)
	sc.Step(`^an admin "([^"]*)" exists with password "([^"]*)"$`, s.anAdminExists)
	sc.Step(`^a user "([^"]*)" without a profile exists with password "([^"]*)"$`, s.aUserWithoutProfileExists)
	sc.Step(`^a project "([^"]*)" exists with members "([^"]*)"$`, s.aProjectExistsWithMembers)

	// Session steps
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogInAs)
	sc.Step(`^I am logged in as "([^"]*)"$`, s.iAmLoggedInAs)
	sc.Step(`^I am not logged in$`, s.iAmNotLoggedIn)

	// Request steps
	sc.Step(`^I send a (GET|POST|PATCH|PUT|DELETE) request to "([^"]*)"$`, s.iSendARequest)
	sc.Step(`^I send a (GET|POST|PATCH|PUT|DELETE) request to "([^"]*)" with body:$`, s.iSendARequestWithBody)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, s.theResponseShouldContain)
	sc.Step(`^the response header "([^"]*)" should contain "([^"]*)"$`, s.theResponseHeaderShouldContain)
	sc.Step(`^the JSON value "([^"]*)" should be "([^"]*)"$`, s.theJSONValueShouldBe)
	sc.Step(`^the JSON value "([^"]*)" should have (\d+) items?$`, s.theJSONValueShouldHaveItems)
	sc.Step(`^I remember the JSON value "([^"]*)" as "([^"]*)"$`, s.iRememberTheJSONValue)

	// Database steps
	sc.Step(`^the table "([^"]*)" should have (\d+) rows?$`, s.theTableShouldHaveRows)

	s.registerCatalogSteps(sc)
}

// Background steps

func (s *StepsContext) usersMayCreateProgrammes() error {
	s.serverConfig.AllowUserProgrammeCreation = true
	return nil
}

func (s *StepsContext) programmesAreDisabled() error {
	s.serverConfig.ProgrammesEnabled = false
	return nil
}

func (s *StepsContext) aSEEKServerIsRunning() error {
	instance, err := StartServer(s.tc, s.tc.DatabaseURL, s.serverConfig)
	if err != nil {
		return err
	}
	s.server = instance
	return nil
}

func (s *StepsContext) createUser(login, password string, admin, withProfile bool) error {
	user, err := endpoints.CreateTestUser(s.tc.DB, login, password, admin, withProfile)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", login, err)
	}
	s.users[login] = password
	if user.PersonID != nil {
		s.people[login] = *user.PersonID
	}
	return nil
}

func (s *StepsContext) aUserExists(login, password string) error {
	return s.createUser(login, password, false, true)
}

func (s *StepsContext) anAdminExists(login, password string) error {
	return s.createUser(login, password, true, true)
}

func (s *StepsContext) aUserWithoutProfileExists(login, password string) error {
	return s.createUser(login, password, false, false)
}

func (s *StepsContext) aProjectExistsWithMembers(title, members string) error {
	var ids []uint
	for _, login := range strings.Split(members, ",") {
		login = strings.TrimSpace(login)
		id, ok := s.people[login]
		if !ok {
			return fmt.Errorf("user %q has no profile", login)
		}
		ids = append(ids, id)
	}
	project, err := endpoints.CreateTestProject(s.tc.DB, title, ids...)
	if err != nil {
		return err
	}
	s.remembered["project:"+title] = strconv.FormatUint(uint64(project.ID), 10)
	return nil
}

// Session steps

func (s *StepsContext) iLogInAs(login, password string) error {
	body, _ := json.Marshal(map[string]string{"login": login, "password": password})
	if err := s.do("POST", "/session", "application/json", bytes.NewReader(body)); err != nil {
		return err
	}
	if s.response.StatusCode == http.StatusCreated {
		s.authToken = gjson.GetBytes(s.responseBody, "token").String()
	}
	return nil
}

func (s *StepsContext) iAmLoggedInAs(login string) error {
	password, ok := s.users[login]
	if !ok {
		return fmt.Errorf("unknown user %q", login)
	}
	if err := s.iLogInAs(login, password); err != nil {
		return err
	}
	if s.authToken == "" {
		return fmt.Errorf("login as %s failed with status %d: %s", login, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) iAmNotLoggedIn() error {
	s.authToken = ""
	return nil
}

// Request steps

// expand replaces {name} with a remembered value. Project ids are
// remembered as {project:Title}.
func (s *StepsContext) expand(text string) string {
	return placeholder.ReplaceAllStringFunc(text, func(m string) string {
		if v, ok := s.remembered[strings.Trim(m, "{}")]; ok {
			return v
		}
		return m
	})
}

func (s *StepsContext) do(method, path, contentType string, body io.Reader) error {
	if s.server == nil {
		return fmt.Errorf("no server is running")
	}
	req, err := http.NewRequest(method, s.server.ServerURL+s.expand(path), body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

func (s *StepsContext) iSendARequest(method, path string) error {
	return s.do(method, path, "", nil)
}

func (s *StepsContext) iSendARequestWithBody(method, path string, body *godog.DocString) error {
	return s.do(method, path, "application/vnd.api+json", strings.NewReader(s.expand(body.Content)))
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseShouldContain(text string) error {
	if !strings.Contains(string(s.responseBody), s.expand(text)) {
		return fmt.Errorf("expected response to contain %q, got %s", text, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theResponseHeaderShouldContain(name, text string) error {
	value := s.response.Header.Get(name)
	if !strings.Contains(value, s.expand(text)) {
		return fmt.Errorf("expected header %s to contain %q, got %q", name, text, value)
	}
	return nil
}

func (s *StepsContext) jsonValue(path string) (gjson.Result, error) {
	if !gjson.ValidBytes(s.responseBody) {
		return gjson.Result{}, fmt.Errorf("response is not JSON: %s", string(s.responseBody))
	}
	value := gjson.GetBytes(s.responseBody, path)
	if !value.Exists() {
		return value, fmt.Errorf("no JSON value at %q in %s", path, string(s.responseBody))
	}
	return value, nil
}

func (s *StepsContext) theJSONValueShouldBe(path, expected string) error {
	value, err := s.jsonValue(path)
	if err != nil {
		return err
	}
	if value.String() != s.expand(expected) {
		return fmt.Errorf("expected %s to be %q, got %q", path, s.expand(expected), value.String())
	}
	return nil
}

func (s *StepsContext) theJSONValueShouldHaveItems(path string, count int) error {
	value, err := s.jsonValue(path)
	if err != nil {
		return err
	}
	if n := len(value.Array()); n != count {
		return fmt.Errorf("expected %s to have %d items, got %d", path, count, n)
	}
	return nil
}

func (s *StepsContext) iRememberTheJSONValue(path, name string) error {
	value, err := s.jsonValue(path)
	if err != nil {
		return err
	}
	s.remembered[name] = value.String()
	return nil
}

// Database steps

func (s *StepsContext) theTableShouldHaveRows(table string, count int) error {
	var n int64
	if err := s.tc.DB.Table(table).Count(&n).Error; err != nil {
		return err
	}
	if int(n) != count {
		return fmt.Errorf("expected %d rows in %s, got %d", count, table, n)
	}
	return nil
}
