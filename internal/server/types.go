package server

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/wordgen/internal/model"
	"github.com/MeKo-Tech/wordgen/internal/pipeline"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	generator    *pipeline.Generator
	corsOrigin   string
	maxBodyBytes int64
	timeoutSec   int
	rateLimiter  *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	CORSOrigin string
	MaxBodyKB  int64
	TimeoutSec int
	RateLimit  RateLimitConfig

	// Generator serves every request; per-request decoder overrides derive
	// from it without reloading the model.
	Generator *pipeline.Generator
}

// RateLimitConfig holds per-client request limits. Zero disables a limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
}

// RequestConfig holds per-request decoder overrides. Zero keeps the
// server's setting.
type RequestConfig struct {
	BeamWidth         int    `json:"beam_width,omitempty"`
	MaxRounds         int    `json:"max_rounds,omitempty"`
	MaxSentenceLength int    `json:"max_sentence_length,omitempty"`
	MaxGreedySteps    int    `json:"max_greedy_steps,omitempty"`
	Format            string `json:"format,omitempty"`
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type ModelResponse struct {
	Size    int          `json:"size"`
	Words   []model.Word `json:"words"`
	RowSums []float64    `json:"row_sums"`
}

type GenerateResponse struct {
	Success bool             `json:"success"`
	Result  *pipeline.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// NewServer creates a new generation server.
func NewServer(config Config) (*Server, error) {
	if config.Generator == nil {
		return nil, errors.New("generator is required")
	}

	s := &Server{
		generator:    config.Generator,
		corsOrigin:   config.CORSOrigin,
		maxBodyBytes: config.MaxBodyKB * 1024,
		timeoutSec:   config.TimeoutSec,
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = 256 * 1024
	}
	if rl := config.RateLimit; rl.Enabled {
		s.rateLimiter = NewRateLimiter(rl.RequestsPerMinute, rl.RequestsPerHour, rl.MaxRequestsPerDay)
	}
	return s, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/model", s.corsMiddleware(s.modelHandler))
	mux.HandleFunc("/generate", s.corsMiddleware(s.rateLimitMiddleware(s.generateHandler)))
	mux.HandleFunc("/ws/generate", s.rateLimitMiddleware(s.generateWebSocketHandler))
	mux.Handle("/metrics", promhttp.Handler())
}
