package rpcserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brojonat/irisgate/service/gateway"
	"github.com/brojonat/irisgate/service/metrics"
)

// GatewayClient is the subset of *gateway.Gateway the transport layer
// depends on, so tests can exercise dispatch against a fake.
type GatewayClient interface {
	SendTransaction(ctx context.Context, text string, params gateway.SendParams) (string, error)
	SendTransactionBatch(ctx context.Context, batch []string, params gateway.SendParams) ([]string, error)
}

// Server exposes a GatewayClient over JSON-RPC 2.0, plus operational
// endpoints for health, metrics, and (optionally) a lifecycle event
// stream.
type Server struct {
	addr    string
	version string
	gateway GatewayClient
	metrics *metrics.Metrics
	events  EventSource
	logger  *slog.Logger
	server  *http.Server

	upgrader websocket.Upgrader
}

// EventSource streams lifecycle events to admin SSE clients. A nil
// EventSource simply disables the stream endpoint.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan []byte, func())
}

// New builds a Server. m and events are optional; a nil value disables the
// corresponding endpoint.
func New(addr, version string, gw GatewayClient, m *metrics.Metrics, events EventSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		version: version,
		gateway: gw,
		metrics: m,
		events:  events,
		logger:  logger.With("component", "rpcserver"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Start builds the mux and serves HTTP, blocking until Shutdown is called.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.Handle("POST /", s.handleHTTPRPC())
	mux.Handle("GET /ws", s.handleWebSocketRPC())

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	if s.events != nil {
		mux.Handle("GET /api/v1/stream/events", s.handleStreamEvents())
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting rpc server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHTTPRPC() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeHTTP(w, response{JSONRPC: "2.0", Error: parseError(err.Error())})
			return
		}

		resp := s.handle(r.Context(), req)
		s.recordRPC(req.Method, "http", resp, start)
		s.writeHTTP(w, resp)
	})
}

func (s *Server) writeHTTP(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handle(ctx context.Context, req request) response {
	resp := response{JSONRPC: "2.0", ID: req.ID}
	result, rpcErr := s.dispatch(ctx, req.Method, req.Params)
	if rpcErr != nil {
		resp.Error = rpcErr
		return resp
	}
	resp.Result = result
	return resp
}

func (s *Server) recordRPC(method, transport string, resp response, start time.Time) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if resp.Error != nil {
		status = "error"
	}
	s.metrics.RecordRPCRequest(method, transport, status, time.Since(start).Seconds())
}
