package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sportpulse/pulse/internal/model"
	"github.com/sportpulse/pulse/internal/orderbook"
	"github.com/sportpulse/pulse/internal/refresher"
)

// handleStream pushes a fresh ladder snapshot every refresh interval until
// the client goes away. Each connection owns its refresher.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.isStopping() {
		writeError(w, http.StatusServiceUnavailable, "server shutting down")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	if !s.register(conn) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(s.cfg.WriteTimeout))
		conn.Close()
		return
	}

	defer func() {
		s.mu.Lock()
		delete(s.streams, conn)
		s.mu.Unlock()
		conn.Close()
		s.wg.Done()
	}()

	remote := r.RemoteAddr
	s.logger.Info("ladder stream opened", "remote", remote)

	var writeMu sync.Mutex
	push := refresher.LadderHandlerFunc(func(ctx context.Context, ladder model.Ladder) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		return conn.WriteJSON(orderbook.NewSnapshot(ladder))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ref := refresher.New(refresher.Config{Interval: s.cfg.RefreshInterval}, s.deps.Ladder, push, s.logger.With("remote", remote))
	ref.Start(ctx)

	// Reading services control frames and notices disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer stopCancel()
	if err := ref.Stop(stopCtx); err != nil {
		s.logger.Warn("ladder refresher did not stop", "remote", remote, "error", err)
	}

	stats := ref.Stats()
	s.logger.Info("ladder stream closed",
		"remote", remote,
		"delivered", stats.Delivered,
		"errors", stats.Errors,
	)
}
