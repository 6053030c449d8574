// Package realtime fans order and bill lifecycle events out to connected
// dashboards (kitchen display, waiter view, cashier view) over websockets.
//
// The contract mirrors the socket event names the dashboards already speak:
// a one-time "ordersSnapshot" on connect, then discrete "orderCreated",
// "orderUpdated", "billCreated" and "billUpdated" events, each carrying the
// full affected record. Delivery is best-effort: a slow or disconnected
// client misses events and resynchronizes from the snapshot on reconnect.
package realtime

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event names pushed to subscribers.
const (
	EventOrdersSnapshot = "ordersSnapshot"
	EventOrderCreated   = "orderCreated"
	EventOrderUpdated   = "orderUpdated"
	EventBillCreated    = "billCreated"
	EventBillUpdated    = "billUpdated"
)

// Broadcaster is the capability handed to components that publish events.
// Emit never blocks and never fails the caller.
type Broadcaster interface {
	Emit(event string, payload interface{})
}

// Message is the wire format for every pushed event.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// SnapshotFunc loads the full current order list (newest first) for a
// late-joining subscriber.
type SnapshotFunc func() (interface{}, error)

const clientBuffer = 16

type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
}

// Hub tracks subscriber connections and fans events out to all of them.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	snapshot SnapshotFunc
	upgrader websocket.Upgrader
}

// NewHub creates a hub. snapshot is called once per new connection to build
// the initial ordersSnapshot payload.
func NewHub(snapshot SnapshotFunc) *Hub {
	return &Hub{
		clients:  make(map[string]*client),
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser dashboards connect cross-origin; access control is
			// handled at the HTTP layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection upgrades an HTTP request to a websocket subscription.
// The new subscriber receives a full order snapshot before any incremental
// event so its view is consistent immediately.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Message, clientBuffer),
	}

	// Snapshot goes out synchronously, ahead of anything queued later.
	if h.snapshot != nil {
		if orders, err := h.snapshot(); err != nil {
			log.Printf("failed to load orders for socket snapshot: %v", err)
		} else if err := conn.WriteJSON(Message{Event: EventOrdersSnapshot, Data: orders}); err != nil {
			log.Printf("failed to send snapshot to client %s: %v", c.id, err)
			conn.Close()
			return
		}
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	log.Printf("socket client connected %s", c.id)

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Emit queues an event for every connected subscriber. A client whose buffer
// is full is dropped rather than blocking the caller.
func (h *Hub) Emit(event string, payload interface{}) {
	msg := Message{Event: event, Data: payload}

	h.mu.RLock()
	var stale []*client
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		log.Printf("dropping slow socket client %s", c.id)
		h.remove(c)
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) writeLoop(c *client) {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			h.remove(c)
			return
		}
	}
}

// readLoop drains incoming frames so pings/close frames are processed and
// detects disconnects.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			log.Printf("socket client disconnected %s", c.id)
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}
