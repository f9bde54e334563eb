package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/wordgen/internal/decoder"
	"github.com/MeKo-Tech/wordgen/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketGenerateRequest asks for one generation run.
type WebSocketGenerateRequest struct {
	Type    string                 `json:"type"` // "generate"
	Options map[string]interface{} `json:"options,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketGenerateResponse is sent once when a run starts, once per beam
// round and once with the final result.
type WebSocketGenerateResponse struct {
	Type      string              `json:"type"`   // "generate_response", "round" or "error"
	Status    string              `json:"status"` // "processing", "completed", "error"
	Round     int                 `json:"round,omitempty"`
	Beam      []pipeline.Sequence `json:"beam,omitempty"`
	Result    *pipeline.Result    `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
	ErrorType string              `json:"error_type,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// generateWebSocketHandler streams beam rounds to the client.
func (s *Server) generateWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(r.Context(), conn)
}

func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(ctx, conn, data)
		}
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, conn WebSocketConnWriter, data []byte) {
	var req WebSocketGenerateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err), "")
		return
	}
	if req.Type != "generate" {
		s.sendWebSocketError(conn, "invalid_request", "Unsupported request type: "+req.Type, "")
		return
	}

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	gen, err := s.generatorForRequest(s.extractWebSocketConfig(req.Options))
	if err != nil {
		s.sendWebSocketError(conn, "invalid_request", err.Error(), requestID)
		return
	}

	s.sendWebSocketResponse(conn, WebSocketGenerateResponse{
		Type:      "generate_response",
		Status:    "processing",
		RequestID: requestID,
	})

	observer := decoder.WithRoundObserver(func(round int, beam []decoder.Hypothesis) {
		seqs := make([]pipeline.Sequence, len(beam))
		for i, h := range beam {
			seqs[i] = gen.Hypothesis(h)
		}
		s.sendWebSocketResponse(conn, WebSocketGenerateResponse{
			Type:      "round",
			Status:    "processing",
			Round:     round,
			Beam:      seqs,
			RequestID: requestID,
		})
	})

	start := time.Now()
	res, err := gen.RunContext(ctx, observer)
	if err != nil {
		generateRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendWebSocketError(conn, "processing_error", fmt.Sprintf("generation failed: %v", err), requestID)
		return
	}
	recordGeneration("websocket", res, time.Since(start))

	s.sendWebSocketResponse(conn, WebSocketGenerateResponse{
		Type:      "generate_response",
		Status:    "completed",
		Result:    res,
		RequestID: requestID,
	})
}

// extractWebSocketConfig reads decoder overrides from request options.
// JSON numbers arrive as float64; anything else is ignored.
func (s *Server) extractWebSocketConfig(options map[string]interface{}) *RequestConfig {
	config := &RequestConfig{}
	if options == nil {
		return config
	}

	intOption := func(key string) int {
		if v, ok := options[key].(float64); ok {
			return int(v)
		}
		return 0
	}
	config.BeamWidth = intOption("beam_width")
	config.MaxRounds = intOption("max_rounds")
	config.MaxSentenceLength = intOption("max_sentence_length")
	config.MaxGreedySteps = intOption("max_greedy_steps")
	return config
}

func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketGenerateResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message, requestID string) {
	s.sendWebSocketResponse(conn, WebSocketGenerateResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
		RequestID: requestID,
	})
}
