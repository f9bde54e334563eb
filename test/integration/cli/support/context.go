package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string // stdout followed by stderr
	LastStdout    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	WorkingDir string
	TempDir    string
	BinaryPath string
	EnvVars    []string

	// Models written by the scenario, keyed by the name used in steps.
	Models map[string]string

	// Server management
	HTTPTestServer *HTTPTestServerWrapper

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    map[string]string
}

// NewTestContext creates a new test context. binaryPath is the wordgen
// executable under test.
func NewTestContext(binaryPath string) (*TestContext, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "wordgen-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &TestContext{
		WorkingDir: workingDir,
		TempDir:    tempDir,
		BinaryPath: binaryPath,
		EnvVars:    []string{},
		Models:     map[string]string{},
	}, nil
}

// Cleanup stops the test server and removes the scenario's temp directory.
func (testCtx *TestContext) Cleanup() error {
	testCtx.stopTestHTTPServer()

	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, fmt.Sprintf("%s=%s", name, value))
}

// TempPath returns name inside the scenario's temp directory.
func (testCtx *TestContext) TempPath(name string) string {
	return filepath.Join(testCtx.TempDir, name)
}

// substituteCommandVariables replaces {model} placeholders with the paths
// of the scenario's models and {tmp} with the temp directory.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	for name, path := range testCtx.Models {
		command = strings.ReplaceAll(command, "{"+name+"}", path)
	}
	return strings.ReplaceAll(command, "{tmp}", testCtx.TempDir)
}
