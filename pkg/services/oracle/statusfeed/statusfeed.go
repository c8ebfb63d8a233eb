// Package statusfeed broadcasts oracle task lifecycle events over
// websocket so an operator console can watch a node work without
// polling its JSON-RPC signature endpoint.
package statusfeed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeLimit   = 10 * time.Second
	pingPeriod   = 30 * time.Second
	readLimit    = 512
	clientBuffer = 64
)

// EventType names the kind of lifecycle transition an Event reports.
type EventType string

const (
	EventTaskStarted  EventType = "task_started"
	EventTaskSigned   EventType = "task_signed"
	EventTaskFinished EventType = "task_finished"
	EventTaskEvicted  EventType = "task_evicted"
)

// Event is one lifecycle transition for a single oracle request.
type Event struct {
	Type      EventType `json:"type"`
	RequestID uint64    `json:"request_id"`
	Time      time.Time `json:"time"`
	Detail    string    `json:"detail,omitempty"`
}

// Hub fans Publish calls out to every currently connected websocket
// client. A client too slow to keep up has its connection dropped
// rather than letting one slow reader stall every other subscriber.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan *websocket.PreparedMessage
}

// NewHub builds an empty Hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:  make(map[*client]struct{}),
	}
}

// Handler upgrades incoming requests to websocket connections and
// registers them to receive every future Publish call.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Debug("statusfeed: upgrade failed", zap.Error(err))
			return
		}
		c := &client{id: uuid.New(), conn: conn, send: make(chan *websocket.PreparedMessage, clientBuffer)}
		h.mu.Lock()
		h.clients[c] = struct{}{}
		h.mu.Unlock()
		h.log.Debug("statusfeed: client connected", zap.Stringer("client", c.id))

		go h.writeLoop(c)
		h.readLoop(c)
	})
}

// Publish encodes evt once and fans it out to every connected client.
func (h *Hub) Publish(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.log.Warn("statusfeed: marshaling event failed", zap.Error(err))
		return
	}
	msg, err := websocket.NewPreparedMessage(websocket.TextMessage, data)
	if err != nil {
		h.log.Warn("statusfeed: preparing message failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Debug("statusfeed: dropping slow client", zap.Stringer("client", c.id))
			h.removeLocked(c)
		}
	}
}

// Close drops every connected client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) removeLocked(c *client) {
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.removeLocked(c)
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeLimit))
			if err := c.conn.WritePreparedMessage(msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeLimit))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readLoop only exists to notice client disconnects and honor pongs;
// the feed is one-directional, so anything a client sends is discarded.
func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pingPeriod * 2))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingPeriod * 2))
	})
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			h.remove(c)
			return
		}
	}
}
