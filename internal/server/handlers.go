package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/wordgen/internal/pipeline"
	"github.com/MeKo-Tech/wordgen/internal/version"
)

const (
	formatText = "text"
	formatCSV  = "csv"
	formatJSON = "json"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, response)
}

// modelHandler describes the loaded vocabulary.
func (s *Server) modelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m := s.generator.Model
	writeJSON(w, http.StatusOK, ModelResponse{
		Size:    m.Size(),
		Words:   m.Words(),
		RowSums: m.RowSums(),
	})
}

// generateHandler runs all stages with the request's decoder overrides.
// The body is an optional JSON RequestConfig; format may also be given as a
// query parameter.
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reqConfig, err := s.parseGenerateRequest(w, r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeErrorResponse(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	gen, err := s.generatorForRequest(reqConfig)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	res, err := gen.RunContext(ctx)
	if err != nil {
		generateRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("generation failed: %v", err), http.StatusServiceUnavailable)
		return
	}
	recordGeneration("http", res, time.Since(start))

	switch reqConfig.Format {
	case formatText:
		s.writeFormatted(w, "text/plain; charset=utf-8", res, pipeline.ToPlainText)
	case formatCSV:
		s.writeFormatted(w, "text/csv", res, pipeline.ToCSV)
	default:
		writeJSON(w, http.StatusOK, GenerateResponse{Success: true, Result: res})
	}
}

func (s *Server) parseGenerateRequest(w http.ResponseWriter, r *http.Request) (*RequestConfig, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	reqConfig := &RequestConfig{}
	if err := json.NewDecoder(r.Body).Decode(reqConfig); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if f := r.URL.Query().Get("format"); f != "" {
		reqConfig.Format = f
	}
	switch reqConfig.Format {
	case "", formatJSON, formatText, formatCSV:
	default:
		return nil, fmt.Errorf("unsupported format: %s", reqConfig.Format)
	}
	return reqConfig, nil
}

// generatorForRequest applies overrides to the server's decoder settings.
func (s *Server) generatorForRequest(rc *RequestConfig) (*pipeline.Generator, error) {
	cfg := s.generator.Config().Decoder
	if rc == nil {
		return s.generator, nil
	}
	if rc.BeamWidth != 0 {
		cfg.BeamWidth = rc.BeamWidth
	}
	if rc.MaxRounds != 0 {
		cfg.MaxRounds = rc.MaxRounds
	}
	if rc.MaxSentenceLength != 0 {
		cfg.MaxSentenceLength = rc.MaxSentenceLength
	}
	if rc.MaxGreedySteps != 0 {
		cfg.MaxGreedySteps = rc.MaxGreedySteps
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decoder settings: %w", err)
	}
	if cfg == s.generator.Config().Decoder {
		return s.generator, nil
	}
	return s.generator.WithDecoder(cfg), nil
}

func (s *Server) writeFormatted(
	w http.ResponseWriter,
	contentType string,
	res *pipeline.Result,
	format func(*pipeline.Result) (string, error),
) {
	out, err := format(res)
	if err != nil {
		http.Error(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.WriteString(w, out)
}

// recordGeneration updates the decode metrics for a finished run.
func recordGeneration(source string, res *pipeline.Result, d time.Duration) {
	generateRequestsTotal.WithLabelValues(source, "success").Inc()
	generateDuration.WithLabelValues(source).Observe(d.Seconds())
	beamRounds.Observe(float64(res.Beam.Rounds))
	sentenceLength.WithLabelValues("greedy").Observe(float64(len(res.Greedy.Indices)))
	sentenceLength.WithLabelValues("beam").Observe(float64(len(res.Beam.Indices)))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, GenerateResponse{Success: false, Error: message})
}
