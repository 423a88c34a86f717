// Package server exposes the accounting engine over a small HTTP JSON API.
// It is presentation glue only: every business rule lives in the usecase
// layer, and order handlers pass an explicit price so the engine never
// fetches a quote itself.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the HTTP server configuration
type Config struct {
	Port     string
	APIToken string // if empty, authentication is disabled
}

// Server is the headless HTTP API server for the ledger
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server with all routes registered on the ServeMux
// and the middleware chain (auth, request logging) applied
func NewServer(cfg Config, h *PortfolioHandler) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.Health)

	mux.HandleFunc("GET /api/positions", h.ListPositions)
	mux.HandleFunc("POST /api/positions", h.AppendPosition)

	mux.HandleFunc("POST /api/orders", h.PlaceOrder)

	mux.HandleFunc("GET /api/trades", h.ListTrades)

	mux.HandleFunc("GET /api/summary", h.Summary)
	mux.HandleFunc("GET /api/quote", h.GetQuote)

	var handler http.Handler = mux
	handler = Auth(cfg.APIToken)(handler)
	handler = Logging(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// Start begins serving and blocks until the server stops
func (s *Server) Start() error {
	logrus.WithField("addr", s.httpServer.Addr).Info("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
