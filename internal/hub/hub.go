// Package hub tracks WebSocket connections and the chat sessions they are
// bound to.
package hub

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrBufferFull is returned when a connection's send buffer is full.
var ErrBufferFull = errors.New("send buffer full")

const sendBufferSize = 256

// Connection is one client WebSocket.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	writeMu   sync.Mutex
	mu        sync.Mutex
	sessionID string
}

// SessionID returns the session the connection is bound to, if any.
func (c *Connection) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// WriteMessage writes a frame with the given deadline. Writes are serialised.
func (c *Connection) WriteMessage(messageType int, data []byte, deadline time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.Conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.Conn.WriteMessage(messageType, data)
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	return c.Conn.Close()
}

// Hub manages all WebSocket connections.
type Hub struct {
	mu sync.RWMutex

	// connections indexed by connection id
	connections map[string]*Connection

	// sessions maps a session id to its connection ids
	sessions map[string]map[string]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
		sessions:    make(map[string]map[string]bool),
	}
}

// NewConnection wraps ws and registers it.
func (h *Hub) NewConnection(ws *websocket.Conn) *Connection {
	conn := &Connection{
		ID:   "conn_" + uuid.New().String()[:8],
		Conn: ws,
		Send: make(chan []byte, sendBufferSize),
	}
	h.mu.Lock()
	h.connections[conn.ID] = conn
	h.mu.Unlock()
	log.Printf("Connection registered: %s", conn.ID)
	return conn
}

// Unregister drops conn and closes its send channel. It is safe to call
// more than once.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn.ID]; !ok {
		return
	}
	delete(h.connections, conn.ID)
	h.unbindLocked(conn)
	close(conn.Send)
	log.Printf("Connection unregistered: %s", conn.ID)
}

// BindSession binds a connection to a session, leaving any previous one.
func (h *Hub) BindSession(conn *Connection, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unbindLocked(conn)

	conn.mu.Lock()
	conn.sessionID = sessionID
	conn.mu.Unlock()
	if h.sessions[sessionID] == nil {
		h.sessions[sessionID] = make(map[string]bool)
	}
	h.sessions[sessionID][conn.ID] = true
}

func (h *Hub) unbindLocked(conn *Connection) {
	old := conn.SessionID()
	if old == "" || h.sessions[old] == nil {
		return
	}
	delete(h.sessions[old], conn.ID)
	if len(h.sessions[old]) == 0 {
		delete(h.sessions, old)
	}
}

// Send queues data on a connection without blocking.
func (h *Hub) Send(conn *Connection, data []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.connections[conn.ID]; !ok {
		return nil
	}
	select {
	case conn.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// SendJSON queues v as JSON on a connection.
func (h *Hub) SendJSON(conn *Connection, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return h.Send(conn, data)
}

// Broadcast queues data on every connection bound to a session and
// returns how many received it. Connections with a full buffer are skipped.
func (h *Hub) Broadcast(sessionID string, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for connID := range h.sessions[sessionID] {
		conn := h.connections[connID]
		if conn == nil {
			continue
		}
		select {
		case conn.Send <- data:
			delivered++
		default:
			log.Printf("WARN: connection %s buffer full, dropping message", connID)
		}
	}
	return delivered
}

// BroadcastJSON sends v as JSON to all connections of a session.
func (h *Hub) BroadcastJSON(sessionID string, v interface{}) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return h.Broadcast(sessionID, data), nil
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// SessionCount returns the number of sessions with a bound connection.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// HasActiveConnections checks if a session has any bound connection.
func (h *Hub) HasActiveConnections(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID]) > 0
}
