// Package broadcast fans auction updates out to WebSocket watchers.
//
// A Hub keeps the connections of one API process grouped by room (one room
// per auction). A Relay carries update payloads from whichever process
// produced them to every Hub: in-process, over Redis Pub/Sub or over NATS.
package broadcast

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ghuser/auctionhouse/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // 54s, must be shorter than pongWait
	maxMessageSize = 512
	sendBuffer     = 256
)

// ErrHubStopped is returned by ServeWS once Run has returned.
var ErrHubStopped = errors.New("broadcast: hub stopped")

// Client is one watcher connection.
type Client struct {
	ID   string
	Room string
	conn *websocket.Conn
	send chan []byte
}

type roomMessage struct {
	room    string
	payload []byte
}

// Hub tracks watcher connections per room and delivers room messages to them.
// Run must be running for registration and delivery to make progress.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage
	done       chan struct{}

	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewHub returns a Hub. checkOrigin may be nil to accept any origin.
func NewHub(log logger.Logger, checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, sendBuffer),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log: log,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]struct{})
			}
			h.rooms[c.Room][c] = struct{}{}
			h.mu.Unlock()
			h.log.DebugContext(ctx, "broadcast: watcher joined", "room", c.Room, "client_id", c.ID)
		case c := <-h.unregister:
			h.remove(c)
		case m := <-h.broadcast:
			h.deliver(ctx, m)
		}
	}
}

// Broadcast queues payload for every watcher of room. It never blocks on
// slow watchers; when the queue itself is full the message is dropped.
func (h *Hub) Broadcast(room string, payload []byte) {
	select {
	case h.broadcast <- roomMessage{room: room, payload: payload}:
	default:
		h.log.Warn("broadcast: hub queue full, dropping update", "room", room)
	}
}

// Count returns the number of watchers in room.
func (h *Hub) Count(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ServeWS upgrades the request and registers the connection in room.
// The greeting, if non-nil, is the first frame the watcher receives.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, room string, greeting []byte) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{
		ID:   uuid.NewString(),
		Room: room,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if greeting != nil {
		c.send <- greeting
	}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return ErrHubStopped
	}

	go c.writePump()
	go c.readPump(h)
	return nil
}

func (h *Hub) deliver(ctx context.Context, m roomMessage) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.rooms[m.room] {
		select {
		case c.send <- m.payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// A watcher that cannot keep up is dropped so it never delays the room.
	for _, c := range slow {
		h.log.WarnContext(ctx, "broadcast: evicting slow watcher", "room", c.Room, "client_id", c.ID)
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[c.Room]
	if !ok {
		return
	}
	if _, ok := members[c]; !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, c.Room)
	}
	close(c.send)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		for c := range members {
			close(c.send)
		}
		delete(h.rooms, room)
	}
}

// writePump delivers queued frames and keeps the connection alive with pings.
// It owns all writes to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and detects disconnects.
func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("broadcast: watcher read error", "room", c.Room, "error", err)
			}
			return
		}
	}
}
