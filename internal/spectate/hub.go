// Package spectate streams the scoreboard to read-only websocket clients.
package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/boxchase/server/internal/sim"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 16 // snapshots queued per spectator before it is dropped
)

// Snapshot is the JSON frame pushed to spectators.
type Snapshot struct {
	Frame  uint32      `json:"frame"`
	Scores []sim.Entry `json:"scores"`
}

// subscriber is one spectator. Only its writer goroutine writes data
// frames to conn; send is closed exactly once, by Hub.drop.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans scoreboard snapshots out to every connected spectator. Present
// runs on the tick goroutine and never waits on a connection: each
// spectator has its own writer goroutine fed through a bounded queue.
type Hub struct {
	every uint32
	log   *zap.Logger

	upgrader websocket.Upgrader

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	latest []byte
}

// NewHub broadcasts once every `every` frames. Values below 1 mean every frame.
func NewHub(every int, log *zap.Logger) *Hub {
	if every < 1 {
		every = 1
	}
	return &Hub{
		every: uint32(every),
		log:   log,
		upgrader: websocket.Upgrader{
			// spectators are read-only, any origin may watch
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// Present implements system.FrameSink. A spectator whose queue is full is
// disconnected rather than slowing the tick.
func (h *Hub) Present(w sim.World, board []sim.Entry) {
	if w.Frame%h.every != 0 {
		return
	}
	payload, err := json.Marshal(Snapshot{Frame: w.Frame, Scores: board})
	if err != nil {
		h.log.Error("encode snapshot", zap.Uint32("frame", w.Frame), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = payload
	for s := range h.subs {
		select {
		case s.send <- payload:
		default:
			h.log.Warn("spectator too slow, dropping",
				zap.String("remote", s.conn.RemoteAddr().String()),
				zap.Uint32("frame", w.Frame),
			)
			h.dropLocked(s, websocket.ClosePolicyViolation, "too slow")
		}
	}
}

// Count returns the number of connected spectators.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades the request and keeps the spectator until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("spectator upgrade", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	s := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	if h.latest != nil {
		s.send <- h.latest
	}
	h.mu.Unlock()
	h.log.Info("spectator joined", zap.String("remote", r.RemoteAddr))

	go h.writePump(s)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Spectators send nothing; reading only drives control frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(s)
	h.log.Info("spectator left", zap.String("remote", r.RemoteAddr))
}

// writePump is the only writer of data frames on s.conn. It exits when
// send is closed or a write fails.
func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case payload, ok := <-s.send:
			if !ok {
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.log.Debug("spectator write failed", zap.Error(err))
				h.drop(s)
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.drop(s)
				return
			}
		}
	}
}

func (h *Hub) drop(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(s, websocket.CloseNormalClosure, "")
}

// dropLocked removes s, stops its writer and closes the connection. It is
// a no-op for a spectator already dropped.
func (h *Hub) dropLocked(s *subscriber, code int, reason string) {
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.send)
	// WriteControl and Close are safe alongside a blocked writer; run them
	// off the caller so a stalled socket cannot hold the hub lock.
	go func(conn *websocket.Conn) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
		conn.Close()
	}(s.conn)
}

// Serve listens on addr until ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	h.log.Info("spectate listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	h.closeAll()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		h.dropLocked(s, websocket.CloseGoingAway, "server shutting down")
	}
}
