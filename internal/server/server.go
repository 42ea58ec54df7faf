// Package server exposes the engine over HTTP: a JSON ask endpoint for
// one-shot questions and a WebSocket chat for multi-turn conversations.
// All forecast data comes from the warehouse; conversation contexts are
// persisted between turns so anaphora works across requests.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ziadkadry99/venue-scout/internal/engine"
	"github.com/ziadkadry99/venue-scout/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port       int
	AllowAll   bool // allow all CORS origins (dev mode)
	WindowDays int  // forecast horizon loaded per question, 0 means default
}

const defaultWindowDays = 60

// Server answers venue questions over HTTP and WebSocket.
type Server struct {
	cfg           Config
	warehouse     *store.Warehouse
	conversations *store.Conversations
	engine        *engine.Engine
	log           *zap.Logger
	router        chi.Router
	httpServer    *http.Server

	// now is replaceable in tests to pin the anchor date.
	now func() time.Time
}

// New creates a server over the given database and engine.
func New(cfg Config, db *store.DB, eng *engine.Engine, logger *zap.Logger) *Server {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = defaultWindowDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:           cfg,
		warehouse:     store.NewWarehouse(db),
		conversations: store.NewConversations(db),
		engine:        eng,
		log:           logger,
		now:           time.Now,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Get("/venues/{venueID}", s.handleGetVenue)
		r.Put("/venues/{venueID}", s.handlePutVenue)
		r.Get("/venues/{venueID}/window", s.handleGetWindow)
		r.Put("/venues/{venueID}/days", s.handlePutDays)
	})

	r.Get("/ws", s.handleWebSocket)

	return r
}

// Router returns the chi router, for tests and embedding.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.Info("server listening", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
