package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/wordgen/internal/pipeline"
	"github.com/MeKo-Tech/wordgen/internal/testutil"
)

// newTestServer serves the garden path model, where greedy and beam differ.
func newTestServer(t *testing.T, opts ...func(*Config)) *Server {
	t.Helper()

	gen, err := pipeline.NewBuilder().WithModel(testutil.GardenPathModel(t)).Build()
	require.NoError(t, err)

	cfg := Config{
		CORSOrigin: "*",
		MaxBodyKB:  4,
		TimeoutSec: 5,
		Generator:  gen,
	}
	for _, o := range opts {
		o(&cfg)
	}
	s, err := NewServer(cfg)
	require.NoError(t, err)
	return s
}

// newTestHTTPServer starts s with all routes on a loopback listener.
func newTestHTTPServer(t *testing.T, s *Server) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}
