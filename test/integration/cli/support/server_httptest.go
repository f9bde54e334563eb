package support

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/MeKo-Tech/wordgen/internal/pipeline"
	"github.com/MeKo-Tech/wordgen/internal/server"
)

// HTTPTestServerWrapper wraps httptest.Server for integration tests.
type HTTPTestServerWrapper struct {
	Server     *httptest.Server
	TestServer *server.Server
}

// createTestHTTPServer serves the real handlers for the named model on an
// httptest listener.
func (testCtx *TestContext) createTestHTTPServer(modelName string, rateLimit server.RateLimitConfig) error {
	path, ok := testCtx.Models[modelName]
	if !ok {
		return fmt.Errorf("unknown model %q", modelName)
	}

	gen, err := pipeline.NewBuilder().WithModelPath(path).Build()
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	srv, err := server.NewServer(server.Config{
		Host:       "127.0.0.1",
		CORSOrigin: "*",
		MaxBodyKB:  4,
		TimeoutSec: 5,
		RateLimit:  rateLimit,
		Generator:  gen,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	testCtx.stopTestHTTPServer()
	testCtx.HTTPTestServer = &HTTPTestServerWrapper{
		Server:     httptest.NewServer(mux),
		TestServer: srv,
	}
	return nil
}

// stopTestHTTPServer stops the httptest server.
func (testCtx *TestContext) stopTestHTTPServer() {
	if testCtx.HTTPTestServer != nil && testCtx.HTTPTestServer.Server != nil {
		testCtx.HTTPTestServer.Server.Close()
		testCtx.HTTPTestServer = nil
	}
}

// GetServerURL returns the base URL of the running test server.
func (testCtx *TestContext) GetServerURL() string {
	if testCtx.HTTPTestServer == nil {
		return ""
	}
	return testCtx.HTTPTestServer.Server.URL
}
