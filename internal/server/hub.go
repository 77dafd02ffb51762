package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub fans realtime snapshots out to connected browsers. The broadcast loop
// is the only goroutine that writes to a registered connection; serve sends
// the initial snapshot before registering, so no two writers ever touch the
// same connection.
type hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool

	closeMu   sync.Mutex
	closed    bool
	broadcast chan any
}

func newHub() *hub {
	h := &hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
	}
	go h.run()
	return h
}

func (h *hub) run() {
	for msg := range h.broadcast {
		h.mu.RLock()
		conns := make([]*websocket.Conn, 0, len(h.clients))
		for conn := range h.clients {
			conns = append(conns, conn)
		}
		h.mu.RUnlock()

		var dead []*websocket.Conn
		for _, conn := range conns {
			if err := conn.WriteJSON(msg); err != nil {
				dead = append(dead, conn)
			}
		}
		if len(dead) > 0 {
			h.mu.Lock()
			for _, conn := range dead {
				if h.clients[conn] {
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// send enqueues a broadcast, dropping it when the queue is full so a slow
// client never backs up the sampler. A no-op after close.
func (h *hub) send(msg any) {
	h.closeMu.Lock()
	defer h.closeMu.Unlock()
	if h.closed {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

func (h *hub) serve(w http.ResponseWriter, r *http.Request, initial any) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	// Initial snapshot goes out before registration; once registered, the
	// broadcast loop owns all writes to this connection.
	if err := conn.WriteJSON(initial); err != nil {
		conn.Close()
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) close() {
	h.closeMu.Lock()
	defer h.closeMu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.broadcast)
}
