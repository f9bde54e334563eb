package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_CORSMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		corsOrigin     string
		method         string
		shouldCallNext bool
	}{
		{"GET request with CORS headers", "*", http.MethodGet, true},
		{"POST request with specific origin", "https://example.com", http.MethodPost, true},
		{"OPTIONS request (preflight)", "*", http.MethodOptions, false},
		{"empty CORS origin", "", http.MethodGet, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := &Server{corsOrigin: tt.corsOrigin}

			nextCalled := false
			handler := server.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			w := httptest.NewRecorder()
			handler(w, httptest.NewRequest(tt.method, "/test", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.corsOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
			assert.Equal(t, tt.shouldCallNext, nextCalled)
		})
	}
}

func TestServer_CORSMiddleware_CapturesStatus(t *testing.T) {
	server := &Server{corsOrigin: "*"}
	handler := server.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestServer_RateLimitMiddleware(t *testing.T) {
	server := &Server{rateLimiter: NewRateLimiter(1, 0, 0)}

	calls := 0
	handler := server.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	w := httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "minute", w.Header().Get("X-RateLimit-Type"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit_exceeded", body["error"])
	assert.Equal(t, 1, calls)

	// A different client has its own budget.
	other := httptest.NewRequest(http.MethodPost, "/generate", nil)
	other.RemoteAddr = "192.0.2.2:1234"
	w = httptest.NewRecorder()
	handler(w, other)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RateLimitMiddleware_Disabled(t *testing.T) {
	server := &Server{}
	called := false
	handler := server.rateLimitMiddleware(func(w http.ResponseWriter, r *http.Request) { called = true })
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestServer_HandleRateLimitError_Quota(t *testing.T) {
	server := &Server{}
	w := httptest.NewRecorder()
	server.handleRateLimitError(w, &QuotaExceededError{Type: "requests", Limit: 5, Used: 5})

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "requests", w.Header().Get("X-Quota-Type"))
	assert.Equal(t, "5", w.Header().Get("X-Quota-Used"))

	w = httptest.NewRecorder()
	server.handleRateLimitError(w, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"remote addr", nil, "198.51.100.7:5555", "198.51.100.7"},
		{"remote addr without port", nil, "198.51.100.7", "198.51.100.7"},
		{"forwarded for list", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "10.0.0.2:1", "203.0.113.1"},
		{"forwarded for single", map[string]string{"X-Forwarded-For": " 203.0.113.9 "}, "10.0.0.2:1", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.5"}, "10.0.0.2:1", "203.0.113.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}
