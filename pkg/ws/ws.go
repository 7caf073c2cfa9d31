// Package ws implements the live notification feed over WebSocket.
//
// Each connected client is tagged with the authenticated user ID, so the
// notification service can push to everyone (Broadcast) or to a single
// order owner (SendTo). The feed is one-way: inbound frames from clients
// are read only to service ping/pong and detect disconnects.
package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/atelier/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins by default — restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetCheckOrigin replaces the default (allow-all) origin checker.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(4 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type directMessage struct {
	userID string
	data   []byte
}

// Hub tracks connected feed clients keyed by user ID.
type Hub struct {
	clients    map[*client]bool
	byUser     map[string]map[*client]bool
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *client
	unregister chan *client
}

// NewHub creates a Hub. Call hub.Run() in its own goroutine at startup.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		byUser:     make(map[string]map[*client]bool),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Broadcast queues a message for every connected client.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
	default:
		logger.Warn("ws: broadcast buffer full, message dropped")
	}
}

// SendTo queues a message for every connection belonging to userID.
// A user with no open connections is not an error.
func (h *Hub) SendTo(userID string, data []byte) {
	select {
	case h.direct <- directMessage{userID: userID, data: data}:
	default:
		logger.Warn("ws: direct buffer full, message dropped", "user", userID)
	}
}

// Run drives the hub event loop.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			if h.byUser[c.userID] == nil {
				h.byUser[c.userID] = make(map[*client]bool)
			}
			h.byUser[c.userID][c] = true
			logger.Info("ws: client connected", "user", c.userID, "total", len(h.clients))

		case c := <-h.unregister:
			h.drop(c)
			logger.Info("ws: client disconnected", "total", len(h.clients))

		case msg := <-h.broadcast:
			for c := range h.clients {
				h.push(c, msg)
			}

		case dm := <-h.direct:
			for c := range h.byUser[dm.userID] {
				h.push(c, dm.data)
			}
		}
	}
}

func (h *Hub) push(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if set := h.byUser[c.userID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.userID)
		}
	}
}

// Upgrade upgrades an HTTP connection and registers the client under userID.
func Upgrade(w http.ResponseWriter, r *http.Request, hub *Hub, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("ws: upgrade failed", "error", err)
		return
	}
	c := &client{hub: hub, conn: conn, userID: userID, send: make(chan []byte, 256)}
	hub.register <- c
	go c.writePump()
	go c.readPump()
}
