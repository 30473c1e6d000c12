// Package live pushes hotel events to connected dashboards over
// websockets.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-management/internal/queue"
)

const writeWait = 5 * time.Second

// Message is the frame sent to every client.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub tracks connected clients and the staff role each signed in with.
type Hub struct {
	clients  map[*websocket.Conn]string
	mutex    sync.Mutex
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewHub returns an empty hub.  allowOrigin decides cross-origin
// upgrades; nil accepts every origin.
func NewHub(log logrus.FieldLogger, allowOrigin func(r *http.Request) bool) *Hub {
	if allowOrigin == nil {
		allowOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients:  make(map[*websocket.Conn]string),
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Notify broadcasts a hotel event.  It never fails: clients that cannot
// be written to are dropped.
func (h *Hub) Notify(_ context.Context, ev queue.HotelEvent) error {
	h.Broadcast(Message{Event: ev.Type, Data: ev})
	return nil
}

// Broadcast sends msg to every client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("live: marshal message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn, role := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.WithError(err).WithField("role", role).Debug("live: dropping client")
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

// Serve upgrades the request and keeps the connection registered until
// the client goes away.  Incoming frames are discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, role string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	h.Register(conn, role)
	defer h.Unregister(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
