package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/wordgen/internal/server"
	"github.com/cucumber/godog"
)

// theServerIsRunningWithModel starts a test server without rate limits.
func (testCtx *TestContext) theServerIsRunningWithModel(modelName string) error {
	return testCtx.createTestHTTPServer(modelName, server.RateLimitConfig{})
}

// theServerIsRunningWithModelAndRateLimit starts a test server allowing
// perMinute requests per client and minute.
func (testCtx *TestContext) theServerIsRunningWithModelAndRateLimit(modelName string, perMinute int) error {
	return testCtx.createTestHTTPServer(modelName, server.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: perMinute,
	})
}

func (testCtx *TestContext) iGET(endpoint string) error {
	return testCtx.makeHTTPRequest(http.MethodGet, endpoint, "")
}

func (testCtx *TestContext) iPOSTTo(endpoint string) error {
	return testCtx.makeHTTPRequest(http.MethodPost, endpoint, "")
}

func (testCtx *TestContext) iPOSTBodyTo(endpoint string, body *godog.DocString) error {
	return testCtx.makeHTTPRequest(http.MethodPost, endpoint, body.Content)
}

func (testCtx *TestContext) iPOSTABodyLargerThanKBTo(kb int, endpoint string) error {
	body := `{"format":"json","padding":"` + strings.Repeat("x", (kb+1)*1024) + `"}`
	return testCtx.makeHTTPRequest(http.MethodPost, endpoint, body)
}

// iPOSTToTimes sends n requests and keeps the last response.
func (testCtx *TestContext) iPOSTToTimes(endpoint string, n int) error {
	for range n {
		if err := testCtx.makeHTTPRequest(http.MethodPost, endpoint, ""); err != nil {
			return err
		}
	}
	return nil
}

func (testCtx *TestContext) iMakeAnOPTIONSRequestTo(endpoint string) error {
	return testCtx.makeHTTPRequest(http.MethodOptions, endpoint, "")
}

// theResponseStatusShouldBe verifies HTTP response status.
func (testCtx *TestContext) theResponseStatusShouldBe(expectedStatus int) error {
	if testCtx.LastHTTPStatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d\nBody: %s",
			expectedStatus, testCtx.LastHTTPStatusCode, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldBeValidJSON() error {
	if !json.Valid([]byte(testCtx.LastHTTPResponse)) {
		return fmt.Errorf("response is not valid JSON: %s", testCtx.LastHTTPResponse)
	}
	return nil
}

// theResponseFieldShouldBe compares a field of a JSON response body.
func (testCtx *TestContext) theResponseFieldShouldBe(field, expected string) error {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &data); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	val, err := lookupField(data, field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(val); got != expected {
		return fmt.Errorf("field %s is %q, expected %q", field, got, expected)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, expected string) error {
	got, ok := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]
	if !ok {
		return fmt.Errorf("response header %s missing", name)
	}
	if got != expected {
		return fmt.Errorf("response header %s is %q, expected %q", name, got, expected)
	}
	return nil
}

// makeHTTPRequest makes an HTTP request to the test server.
func (testCtx *TestContext) makeHTTPRequest(method, endpoint, body string) error {
	base := testCtx.GetServerURL()
	if base == "" {
		return errors.New("no test server is running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, base+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(data)
	testCtx.LastHTTPHeaders = make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		if len(values) > 0 {
			testCtx.LastHTTPHeaders[key] = values[0]
		}
	}
	return nil
}

// RegisterServerSteps registers all server mode step definitions.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the server is running with model "([^"]*)"$`, testCtx.theServerIsRunningWithModel)
	sc.Step(`^the server is running with model "([^"]*)" and a limit of (\d+) requests per minute$`,
		testCtx.theServerIsRunningWithModelAndRateLimit)

	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^I POST to "([^"]*)"$`, testCtx.iPOSTTo)
	sc.Step(`^I POST to "([^"]*)" with body:$`, testCtx.iPOSTBodyTo)
	sc.Step(`^I POST a body larger than (\d+) KB to "([^"]*)"$`, testCtx.iPOSTABodyLargerThanKBTo)
	sc.Step(`^I POST to "([^"]*)" (\d+) times$`, testCtx.iPOSTToTimes)
	sc.Step(`^I make an OPTIONS request to "([^"]*)"$`, testCtx.iMakeAnOPTIONSRequestTo)

	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response should be valid JSON$`, testCtx.theResponseShouldBeValidJSON)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseFieldShouldBe)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
}
