// scope_server.go - WebSocket scope and control server
//
// Streams engine output frames to connected clients as JSON text messages
// and accepts control writes on the same connection. The comparator rides
// along: channels A and B of the comparator watch the two slope outputs,
// so a scope client sees the window gates react to the slopes live.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DEFAULT_FRAME_RATE = 60 // frames per second streamed to each client

	scopeWriteWait = 5 * time.Second
	scopePongWait  = 30 * time.Second
	scopePingEvery = 20 * time.Second
)

// ScopeFrame is the wire format for one streamed snapshot.
type ScopeFrame struct {
	Engine     EngineFrame     `json:"engine"`
	Comparator ComparatorFrame `json:"comparator"`
}

type ScopeServer struct {
	engine     *DualSlopeEngine
	comparator *ComparatorEngine
	logger     *slog.Logger
	frameRate  int
}

func NewScopeServer(engine *DualSlopeEngine, comparator *ComparatorEngine, frameRate int, logger *slog.Logger) *ScopeServer {
	if frameRate <= 0 {
		frameRate = DEFAULT_FRAME_RATE
	}
	return &ScopeServer{
		engine:     engine,
		comparator: comparator,
		logger:     logger,
		frameRate:  frameRate,
	}
}

var scopeUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Register registers the scope handler on the provided mux.
func (s *ScopeServer) Register(mux *http.ServeMux, path string) {
	mux.HandleFunc(path, s.handleScope)
}

// frame snapshots the engine and runs the comparator over the two slope
// outputs.
func (s *ScopeServer) frame() ScopeFrame {
	ef := s.engine.Frame()
	cf := s.comparator.Tick(ComparatorInputs{
		In:        [NUM_COMPARATOR_CHANNELS]float64{ef.A.Slope, ef.B.Slope},
		Connected: [NUM_COMPARATOR_CHANNELS]bool{true, true},
	})
	return ScopeFrame{Engine: ef, Comparator: cf}
}

// handleScope upgrades the connection and starts the two pumps. The pumps
// are deliberately not tied to the request context: net/http cancels it
// when the handler returns, which would tear the connection down early.
// Lifetime is managed by the read/write errors instead.
func (s *ScopeServer) handleScope(w http.ResponseWriter, r *http.Request) {
	conn, err := scopeUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("scope upgrade failed", "error", err)
		return
	}
	s.logger.Info("scope client connected", "remote_addr", r.RemoteAddr)

	done := make(chan struct{})
	go s.readPump(conn, done)
	go s.writePump(conn, r.RemoteAddr, done)
}

// readPump decodes control messages and applies them to the engine. It
// also services pongs; a read error ends the connection.
func (s *ScopeServer) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(scopePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(scopePongWait))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ControlMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Warn("scope control decode failed", "error", err)
			continue
		}
		if err := s.engine.Apply(msg); err != nil {
			s.logger.Warn("scope control rejected", "target", msg.Target, "error", err)
		}
	}
}

// writePump streams frames at the configured rate until the reader side
// ends or a write fails.
func (s *ScopeServer) writePump(conn *websocket.Conn, remoteAddr string, done <-chan struct{}) {
	frameTicker := time.NewTicker(time.Second / time.Duration(s.frameRate))
	pingTicker := time.NewTicker(scopePingEvery)
	defer frameTicker.Stop()
	defer pingTicker.Stop()
	defer conn.Close()

	for {
		select {
		case <-done:
			_ = conn.SetWriteDeadline(time.Now().Add(scopeWriteWait))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			s.logger.Info("scope client disconnected", "remote_addr", remoteAddr)
			return

		case <-frameTicker.C:
			payload, err := json.Marshal(s.frame())
			if err != nil {
				s.logger.Warn("scope frame marshal failed", "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(scopeWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					s.logger.Info("scope write pump exiting", "remote_addr", remoteAddr, "error", err)
				}
				return
			}

		case <-pingTicker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(scopeWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Run serves the scope endpoint at /scope until ctx is canceled, then
// shuts the HTTP server down gracefully.
func (s *ScopeServer) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.Register(mux, "/scope")

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	s.logger.Info("scope server listening", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("scope server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("scope server shutdown: %w", err)
		}
		<-errCh
		return nil

	case err := <-errCh:
		return err
	}
}
