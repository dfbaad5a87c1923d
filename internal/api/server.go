// Package api exposes the index over HTTP. All query endpoints are
// read-only views over the current snapshot; the hook endpoint is the
// single write path and runs the incremental pipeline synchronously.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"symidx/internal/config"
	"symidx/internal/indexer"
	"symidx/internal/logging"
)

// Server serves the query and hook API
type Server struct {
	manager *indexer.Manager
	config  config.ServerConfig
	logger  *logging.Logger
	httpSrv *http.Server
}

// NewServer wires the manager behind the HTTP surface
func NewServer(manager *indexer.Manager, cfg config.ServerConfig, logger *logging.Logger) *Server {
	s := &Server{
		manager: manager,
		config:  cfg,
		logger:  logger,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler builds the routed and middleware-wrapped handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/context", s.handleContext)
	mux.HandleFunc("/api/v1/search", s.handleSearch)
	mux.HandleFunc("/api/v1/graph", s.handleGraph)
	mux.HandleFunc("/api/v1/refresh", s.handleRefresh)
	mux.HandleFunc("/api/v1/hook", s.handleHook)

	var handler http.Handler = mux
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}

// ListenAndServe blocks serving requests until the server is shut down
func (s *Server) ListenAndServe() error {
	s.logger.Info("API server listening", map[string]interface{}{
		"addr": s.httpSrv.Addr,
	})
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve on %s: %w", s.httpSrv.Addr, err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// apiError is the error payload shape shared by all endpoints
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: apiError{Code: code, Message: message}})
}
