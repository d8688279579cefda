// Package ws pushes applied view replacements to connected dashboard
// clients.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"expensedash/internal/report"
)

// Hub tracks connected clients and broadcasts to all of them.
type Hub struct {
	mu         sync.Mutex
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	once       sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 8),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop until Stop is called.
func (h *Hub) Start() {
	go func() {
		for {
			select {
			case conn := <-h.register:
				h.mu.Lock()
				h.clients[conn] = true
				n := len(h.clients)
				h.mu.Unlock()
				slog.Debug("Websocket client connected", "clients", n)
			case conn := <-h.unregister:
				h.mu.Lock()
				if _, ok := h.clients[conn]; ok {
					delete(h.clients, conn)
					conn.Close()
				}
				n := len(h.clients)
				h.mu.Unlock()
				slog.Debug("Websocket client disconnected", "clients", n)
			case message := <-h.broadcast:
				h.mu.Lock()
				for conn := range h.clients {
					if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
						slog.Warn("Websocket write failed, dropping client", "error", err)
						conn.Close()
						delete(h.clients, conn)
					}
				}
				h.mu.Unlock()
			case <-h.done:
				h.mu.Lock()
				for conn := range h.clients {
					conn.Close()
					delete(h.clients, conn)
				}
				h.mu.Unlock()
				return
			}
		}
	}()
}

// Stop closes every connection and terminates the loop.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}

// BroadcastView sends a refreshed ViewState to every connected client.
func (h *Hub) BroadcastView(v report.ViewState) {
	payload, err := json.Marshal(map[string]any{
		"type": "view_update",
		"view": v,
	})
	if err != nil {
		slog.Error("Failed to marshal view update", "error", err)
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	}
}

// RegisterClient adds a freshly upgraded connection.
func (h *Hub) RegisterClient(conn *websocket.Conn) {
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
	}
}

// UnregisterClient removes a connection.
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}
