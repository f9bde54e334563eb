package support

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// iRunCommand executes a command and stores the result. A leading
// "wordgen" resolves to the binary under test.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)

	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}
	if parts[0] == "wordgen" && testCtx.BinaryPath != "" {
		parts[0] = testCtx.BinaryPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...) //nolint:gosec // G204: commands come from feature files
	cmd.Dir = testCtx.TempDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	testCtx.LastStdout = stdout.String()
	testCtx.LastOutput = stdout.String() + stderr.String()
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)

	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			testCtx.LastExitCode = exitError.ExitCode()
		} else {
			testCtx.LastExitCode = -1
		}
	} else {
		testCtx.LastExitCode = 0
	}

	return nil
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldContain verifies the output contains specific text.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	expectedText = testCtx.substituteCommandVariables(expectedText)
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldNotContain verifies the output lacks specific text.
func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", text, testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldEqual compares stdout with a doc string.
func (testCtx *TestContext) theOutputShouldEqual(expected *godog.DocString) error {
	want := strings.TrimRight(expected.Content, "\n")
	got := strings.TrimRight(testCtx.LastStdout, "\n")
	if got != want {
		return fmt.Errorf("output mismatch\nExpected:\n%s\nActual:\n%s", want, got)
	}
	return nil
}

// theOutputShouldBeValidJSON verifies stdout is valid JSON.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	if !json.Valid([]byte(testCtx.LastStdout)) {
		return fmt.Errorf("output is not valid JSON: %s", testCtx.LastStdout)
	}
	return nil
}

// theJSONShouldContain verifies a JSON object on stdout has a field. Nested
// fields are written as "beam.text".
func (testCtx *TestContext) theJSONShouldContain(field string) error {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	_, err := lookupField(data, field)
	return err
}

// theJSONFieldShouldBe compares the string form of a JSON field.
func (testCtx *TestContext) theJSONFieldShouldBe(field, expected string) error {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
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

// theJSONArrayShouldHaveEntries verifies stdout is a JSON array of n entries.
func (testCtx *TestContext) theJSONArrayShouldHaveEntries(n int) error {
	var data []interface{}
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &data); err != nil {
		return fmt.Errorf("output is not a JSON array: %w", err)
	}
	if len(data) != n {
		return fmt.Errorf("expected %d entries, got %d", n, len(data))
	}
	return nil
}

func lookupField(data map[string]interface{}, field string) (interface{}, error) {
	parts := strings.Split(field, ".")
	var current interface{} = data
	for i, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("cannot navigate into non-object field '%s'", strings.Join(parts[:i], "."))
		}
		val, exists := obj[part]
		if !exists {
			return nil, fmt.Errorf("field '%s' not found in JSON", strings.Join(parts[:i+1], "."))
		}
		current = val
	}
	return current, nil
}

// theOutputShouldBeValidCSV verifies stdout parses as CSV.
func (testCtx *TestContext) theOutputShouldBeValidCSV() error {
	records, err := csv.NewReader(strings.NewReader(testCtx.LastStdout)).ReadAll()
	if err != nil {
		return fmt.Errorf("output is not valid CSV: %w", err)
	}
	if len(records) < 2 {
		return fmt.Errorf("expected a header and at least one row, got %d records", len(records))
	}
	return nil
}

// theCSVShouldContainProperHeaders verifies the CSV header row.
func (testCtx *TestContext) theCSVShouldContainProperHeaders() error {
	first, _, _ := strings.Cut(testCtx.LastStdout, "\n")
	if first != "model,decoder,rank,probability,length,text" {
		return fmt.Errorf("unexpected CSV header: %s", first)
	}
	return nil
}

// theErrorShouldMention verifies the error output contains specific text.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil && testCtx.LastExitCode == 0 {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}

	fullErrorText := testCtx.LastOutput
	if testCtx.LastError != nil {
		fullErrorText += " " + testCtx.LastError.Error()
	}

	if !strings.Contains(strings.ToLower(fullErrorText), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %s", errorText, fullErrorText)
	}
	return nil
}

// theFileShouldExist verifies a file was created.
func (testCtx *TestContext) theFileShouldExist(filename string) error {
	path := testCtx.substituteCommandVariables(filename)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file %s does not exist: %w", path, err)
	}
	return nil
}

// theFileShouldContain verifies a created file contains specific text.
func (testCtx *TestContext) theFileShouldContain(filename, expectedContent string) error {
	path := testCtx.substituteCommandVariables(filename)
	content, err := os.ReadFile(path) //nolint:gosec // G304: path inside the scenario temp dir
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if !strings.Contains(string(content), expectedContent) {
		return fmt.Errorf("file %s does not contain '%s'\nActual content: %s", path, expectedContent, string(content))
	}
	return nil
}

// theEnvironmentVariableIsSetTo sets an environment variable for later commands.
func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	testCtx.AddEnvVar(name, testCtx.substituteCommandVariables(value))
	return nil
}

// RegisterCommonSteps registers all common step definitions.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)

	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the output should be:$`, testCtx.theOutputShouldEqual)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON should contain "([^"]*)"$`, testCtx.theJSONShouldContain)
	sc.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, testCtx.theJSONFieldShouldBe)
	sc.Step(`^the JSON array should have (\d+) entries$`, testCtx.theJSONArrayShouldHaveEntries)
	sc.Step(`^the output should be valid CSV$`, testCtx.theOutputShouldBeValidCSV)
	sc.Step(`^the CSV should contain proper headers$`, testCtx.theCSVShouldContainProperHeaders)

	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
}
