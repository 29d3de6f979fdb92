// Package live pushes score updates for a match to WebSocket subscribers.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16
)

// Event names carried in Message.Event.
const (
	EventSnapshot = "snapshot"
	EventPoint    = "point"
	EventComplete = "complete"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin checks belong to the CORS middleware in front of the hub.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to subscribers.
type Message struct {
	Event   string `json:"event"`
	MatchID string `json:"match_id"`
	Data    any    `json:"data"`
}

// SnapshotFunc returns the current state of a match, sent to a subscriber
// as soon as it connects.
type SnapshotFunc func(ctx context.Context, matchID string) (any, error)

// Hub fans out match updates to the clients subscribed to each match.
type Hub struct {
	snapshot SnapshotFunc

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a Hub. snapshot may be nil, in which case subscribers only
// receive updates published after they connect.
func New(snapshot SnapshotFunc) *Hub {
	return &Hub{
		snapshot: snapshot,
		rooms:    make(map[string]map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeMatch upgrades the request to a WebSocket subscribed to matchID.
// Blocks until the connection closes.
func (h *Hub) ServeMatch(w http.ResponseWriter, r *http.Request, matchID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}

	h.register(matchID, c)
	defer h.unregister(matchID, c)

	if h.snapshot != nil {
		if state, err := h.snapshot(r.Context(), matchID); err == nil {
			if data, err := json.Marshal(Message{Event: EventSnapshot, MatchID: matchID, Data: state}); err == nil {
				h.deliver(matchID, c, data)
			}
		} else {
			slog.Warn("live: snapshot failed", "match_id", matchID, "err", err)
		}
	}

	go c.writePump()
	c.readPump()
}

// Publish sends an event to every subscriber of matchID. Clients whose
// buffer is full are disconnected.
func (h *Hub) Publish(matchID, event string, data any) error {
	msg, err := json.Marshal(Message{Event: event, MatchID: matchID, Data: data})
	if err != nil {
		return err
	}

	// Sends happen under the read lock: unregister closes c.send only while
	// holding the write lock, so no send can race a close.
	var slow []*client
	h.mu.RLock()
	for c := range h.rooms[matchID] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		slog.Warn("live: dropping slow subscriber", "match_id", matchID)
		h.unregister(matchID, c)
	}
	return nil
}

// Count returns the number of clients subscribed to matchID.
func (h *Hub) Count(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}

// deliver queues data for c if c is still subscribed. It never blocks.
func (h *Hub) deliver(matchID string, c *client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.rooms[matchID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) register(matchID string, c *client) {
	h.mu.Lock()
	room, ok := h.rooms[matchID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[matchID] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(matchID string, c *client) {
	h.mu.Lock()
	if room, ok := h.rooms[matchID]; ok {
		if _, ok := room[c]; ok {
			delete(room, c)
			close(c.send)
		}
		if len(room) == 0 {
			delete(h.rooms, matchID)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for c := range room {
			close(c.send)
		}
		delete(h.rooms, id)
	}
}

// writePump forwards queued messages to the connection and sends periodic
// pings. One goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only services control frames; subscribers never send data.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
