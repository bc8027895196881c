// Package server exposes the triage system over HTTP: run control, status
// and results endpoints, roster queries, and a websocket stream of run
// events.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ravencare/ravencare/catalog"
	"github.com/ravencare/ravencare/config"
	"github.com/ravencare/ravencare/errors"
	"github.com/ravencare/ravencare/events"
	"github.com/ravencare/ravencare/logger"
	"github.com/ravencare/ravencare/triage"
)

// MaxClients bounds concurrent websocket connections.
const MaxClients = 100

// HTTP server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server is the RavenCare HTTP and websocket front end.
type Server struct {
	cfg     config.Config
	runner  *triage.Runner
	catalog *catalog.Catalog

	heartbeat *events.Heartbeat

	mu      sync.RWMutex
	clients map[*Client]bool

	httpServer *http.Server
	logger     *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a server around an existing runner and doctor catalog.
func New(cfg config.Config, runner *triage.Runner, cat *catalog.Catalog) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	interval := time.Duration(cfg.Triage.HeartbeatSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}

	return &Server{
		cfg:       cfg,
		runner:    runner,
		catalog:   cat,
		heartbeat: events.NewHeartbeat(runner.Events(), interval),
		clients:   make(map[*Client]bool),
		logger:    logger.Logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Routes builds the HTTP mux. Exposed for tests.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/start_triage", s.handleStartTriage)
	mux.HandleFunc("/stop_triage", s.handleStopTriage)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/results", s.handleResults)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/patients", s.handlePatients)
	mux.HandleFunc("/api/doctors", s.handleDoctors)
	mux.HandleFunc("/api/system-info", s.handleSystemInfo)
	return mux
}

// ListenAndServe starts the HTTP server and blocks until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.EffectivePort())

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	s.heartbeat.Start()

	s.logger.Infow("Server listening",
		"addr", addr,
		"specialties", s.catalog.Len())

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server failed")
	}
	return nil
}

// Shutdown drains clients and stops the HTTP server.
func (s *Server) Shutdown() error {
	s.logger.Infow("Server shutting down")

	s.cancel()
	s.heartbeat.Stop()

	s.mu.Lock()
	for client := range s.clients {
		client.close()
	}
	s.clients = make(map[*Client]bool)
	s.mu.Unlock()

	s.wg.Wait()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return errors.Wrap(err, "http shutdown failed")
		}
	}
	return nil
}

// registerClient adds a websocket client, enforcing the connection cap.
func (s *Server) registerClient(client *Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.clients) >= MaxClients {
		s.logger.Warnw("Max clients reached, rejecting connection",
			"client_id", client.id,
			"max_clients", MaxClients)
		return false
	}

	s.clients[client] = true
	s.logger.Infow("Client connected",
		"client_id", client.id,
		"total_clients", len(s.clients))
	return true
}

// unregisterClient removes a websocket client.
func (s *Server) unregisterClient(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	s.logger.Infow("Client disconnected",
		"client_id", client.id,
		"total_clients", len(s.clients))
}

// clientCount returns the number of connected websocket clients.
func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
