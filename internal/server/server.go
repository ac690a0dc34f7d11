// Package server exposes the ladder, quotes and trades over HTTP and streams
// regenerated ladders over a websocket.
//
// Routes:
//
//	GET  /health
//	GET  /events
//	GET  /orderbook
//	GET  /quote?event=&timeline=&strike=&type=call|put
//	POST /trades
//	GET  /trades?event=&timeline=
//	GET  /ws/orderbook
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/sportpulse/pulse/internal/catalog"
	"github.com/sportpulse/pulse/internal/refresher"
	"github.com/sportpulse/pulse/internal/store"
	"github.com/sportpulse/pulse/internal/trade"
)

// Config holds server configuration.
type Config struct {
	Addr            string        // Listen address (e.g., ":8080")
	RefreshInterval time.Duration // Ladder push cadence per stream
	WriteTimeout    time.Duration // Websocket write deadline
	ShutdownTimeout time.Duration // Graceful shutdown budget
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		RefreshInterval: 5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Ladder  refresher.LadderSource
	Trades  *trade.Service
	Catalog catalog.Catalog
	Store   store.TradeStore
}

// Server is the HTTP front end.
type Server struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger

	router   *mux.Router
	upgrader websocket.Upgrader
	http     *http.Server

	mu       sync.Mutex
	stopping bool // Set by Stop; no stream registers afterwards
	streams  map[*websocket.Conn]struct{}
	wg       sync.WaitGroup
}

// New creates a server and registers its routes.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = def.RefreshInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
		router: mux.NewRouter(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		streams: make(map[*websocket.Conn]struct{}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	s.router.HandleFunc("/orderbook", s.handleOrderbook).Methods(http.MethodGet)
	s.router.HandleFunc("/quote", s.handleQuote).Methods(http.MethodGet)
	s.router.HandleFunc("/trades", s.handleExecute).Methods(http.MethodPost)
	s.router.HandleFunc("/trades", s.handleHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/orderbook", s.handleStream).Methods(http.MethodGet)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}

	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	s.logger.Info("http server started", "addr", ln.Addr().String())
	return nil
}

// Stop shuts down the listener, closes live streams and waits for them.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}

	// Hijacked websocket connections are not tracked by http.Server.
	s.mu.Lock()
	s.stopping = true
	for conn := range s.streams {
		conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("http server stopped")
	return err
}

// register tracks conn until its handler returns. It fails once Stop began,
// so wg.Add never races wg.Wait.
func (s *Server) register(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.streams[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) isStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// ActiveStreams returns the number of connected websocket clients.
func (s *Server) ActiveStreams() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}
