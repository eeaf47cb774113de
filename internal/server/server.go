// Package server provides the HTTP and WebSocket control surface.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GriffinCanCode/good-reader/backend/platform/internal/orchestrator"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/orchestrator/scan"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/overlay"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/screen"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/trace"

	apperrors "github.com/GriffinCanCode/good-reader/backend/platform/internal/errors"
)

// Message types.
type Message struct {
	Type    string `json:"type"`
	TraceID string `json:"trace_id,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type StatusMessage struct {
	Type string `json:"type"`
	orchestrator.Status
	LastScan []scan.TranslatedBox `json:"last_scan"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	// Prune old timestamps
	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	orch       *orchestrator.Manager
	feed       *overlay.Feed
	mu         sync.RWMutex
	conns      map[*websocket.Conn]struct{}
	rateLimits map[*websocket.Conn]*rateLimiter
}

// New creates a server and starts fanning overlay events out to
// connected clients.
func New(orch *orchestrator.Manager, feed *overlay.Feed) *Server {
	s := &Server{
		orch:       orch,
		feed:       feed,
		conns:      make(map[*websocket.Conn]struct{}),
		rateLimits: make(map[*websocket.Conn]*rateLimiter),
	}

	go s.broadcastOverlays()

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint: overlay events out, commands in
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST API
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/start", s.handleStart)
	mux.HandleFunc("POST /api/stop", s.handleStop)
	mux.HandleFunc("POST /api/clear", s.handleClear)
	mux.HandleFunc("GET /api/region", s.handleRegionGet)
	mux.HandleFunc("PUT /api/region", s.handleRegionPut)
	mux.HandleFunc("DELETE /api/region", s.handleRegionDelete)
	mux.HandleFunc("GET /api/cache", s.handleCache)
	mux.HandleFunc("GET /api/overlays", s.handleOverlays)
	mux.HandleFunc("GET /api/capture", s.handleCapture)

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", promhttp.Handler())

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) statusMessage() StatusMessage {
	return StatusMessage{
		Type:     "status",
		Status:   s.orch.Status(),
		LastScan: s.orch.LastScan(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.statusMessage())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	// The scan outlives the request, so it cannot run on r.Context()
	if err := s.orch.Start(context.Background()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.orch.Stop()
	writeJSON(w, map[string]string{"status": "stopped"})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	overlays, entries := s.orch.ClearAll()
	writeJSON(w, map[string]int{
		"overlays_cleared": overlays,
		"cache_cleared":    entries,
	})
}

func (s *Server) handleRegionGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.orch.Region())
}

func (s *Server) handleRegionPut(w http.ResponseWriter, r *http.Request) {
	var region screen.Region
	if err := json.NewDecoder(r.Body).Decode(&region); err != nil {
		writeError(w, apperrors.Wrap(err, apperrors.CodeInvalidArgument, "invalid region body"))
		return
	}
	if err := s.orch.SetRegion(region); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, region)
}

func (s *Server) handleRegionDelete(w http.ResponseWriter, r *http.Request) {
	_ = s.orch.SetRegion(screen.Region{})
	writeJSON(w, map[string]string{"status": "region_reset"})
}

func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	items := s.orch.CacheItems()
	writeJSON(w, map[string]any{
		"count":   len(items),
		"entries": items,
	})
}

func (s *Server) handleOverlays(w http.ResponseWriter, r *http.Request) {
	snapshot := s.orch.OverlaySnapshot()
	writeJSON(w, map[string]any{
		"count":    len(snapshot),
		"overlays": snapshot,
	})
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	frame := s.orch.LatestFrame()
	if len(frame) == 0 {
		writeError(w, apperrors.New(apperrors.CodeNotFound, "no frame captured yet"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(frame)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.rateLimits[conn] = &rateLimiter{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		delete(s.rateLimits, conn)
		s.mu.Unlock()
	}()

	// Get trace context from HTTP upgrade request
	baseCtx := r.Context()
	log := trace.Logger(baseCtx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	// New clients resync from a full status snapshot
	_ = wsjson.Write(baseCtx, conn, s.statusMessage())

	for {
		var msg json.RawMessage
		if err := wsjson.Read(baseCtx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		// Check rate limit
		s.mu.RLock()
		rl := s.rateLimits[conn]
		s.mu.RUnlock()

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(baseCtx, conn, ErrorMessage{
				Type:    "error",
				Message: "rate limit exceeded",
			})
			continue
		}

		var base Message
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}

		// Commands may carry their own trace_id
		ctx := baseCtx
		if tc, ok := trace.ExtractFromJSON(msg); ok {
			ctx = trace.WithContext(ctx, tc)
		}

		s.handleCommand(ctx, conn, base.Type)
	}
}

func (s *Server) handleCommand(ctx context.Context, conn *websocket.Conn, command string) {
	ctx, span := trace.StartSpan(ctx, "ws_command")
	defer span.End()
	span.SetAttr("command", command)

	log := trace.Logger(ctx)

	switch command {
	case "start":
		if err := s.orch.Start(context.Background()); err != nil {
			log.Error("start failed", "error", err)
			_ = wsjson.Write(ctx, conn, ErrorMessage{Type: "error", Message: err.Error()})
			return
		}
	case "stop":
		s.orch.Stop()
	case "clear":
		s.orch.ClearAll()
	case "status":
		// Fall through to the status reply
	default:
		log.Debug("unknown command", "command", command)
		return
	}

	_ = wsjson.Write(ctx, conn, s.statusMessage())
}

func (s *Server) broadcastOverlays() {
	for evt := range s.feed.Events() {
		s.mu.RLock()
		for conn := range s.conns {
			go func(c *websocket.Conn, e overlay.Event) {
				_ = wsjson.Write(context.Background(), c, e)
			}(conn, evt)
		}
		s.mu.RUnlock()
	}
}
