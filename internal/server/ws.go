package server

import (
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdemarena/internal/game"
)

// watcherHub fans spectator snapshots out to the websocket connections
// watching one table. Watchers only receive: the read loop exists solely to
// notice disconnects. Snapshots are already redacted, so a watcher never
// sees hole cards before showdown.
type watcherHub struct {
	logger *log.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func newWatcherHub(logger *log.Logger) *watcherHub {
	return &watcherHub{
		logger: logger,
		conns:  make(map[*websocket.Conn]bool),
	}
}

func (h *watcherHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	count := len(h.conns)
	h.mu.Unlock()
	h.logger.Debug("watcher connected", "watchers", count)

	// Drain incoming frames until the peer goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()
}

func (h *watcherHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// broadcast pushes a snapshot to every watcher, dropping connections that
// fail to accept it.
func (h *watcherHub) broadcast(snap game.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(snap); err != nil {
			h.logger.Debug("dropping watcher", "error", err)
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

func (h *watcherHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		_ = conn.Close()
		delete(h.conns, conn)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWatch upgrades the request and subscribes it to the table's
// spectator stream, sending the current state immediately.
func (s *Service) handleWatch(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	snap := table.Game.Snapshot("")
	if err := conn.WriteJSON(snap); err != nil {
		_ = conn.Close()
		return
	}
	table.watchers.add(conn)
}
