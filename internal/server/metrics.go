package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordgen_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordgen_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Generation metrics
	generateRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordgen_generate_requests_total",
			Help: "Total number of generation requests",
		},
		[]string{"source", "status"}, // source: http, websocket
	)

	generateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordgen_generate_duration_seconds",
			Help:    "Time spent running all generation stages",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"source"},
	)

	beamRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wordgen_beam_rounds",
			Help:    "Expansion rounds performed by the beam decoder",
			Buckets: prometheus.LinearBuckets(1, 1, 12),
		},
	)

	sentenceLength = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wordgen_sentence_length_tokens",
			Help:    "Tokens in decoded sentences, reserved tokens included",
			Buckets: prometheus.LinearBuckets(2, 2, 16),
		},
		[]string{"decoder"}, // decoder: greedy, beam
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordgen_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour, requests
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wordgen_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wordgen_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
