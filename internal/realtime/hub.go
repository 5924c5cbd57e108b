package realtime

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	readLimit     = 4096
	readDeadline  = 60 * time.Second
	writeDeadline = 5 * time.Second
	pingInterval  = 25 * time.Second
	clientBuffer  = 32
)

type client struct {
	userID int32
	conn   *websocket.Conn
	send   chan domain.ChangeEvent
	// collections the client asked for; empty means all
	collections atomic.Pointer[map[string]bool]
}

func (c *client) wants(ev domain.ChangeEvent) bool {
	if !ev.VisibleTo(c.userID) {
		return false
	}
	filter := c.collections.Load()
	if filter == nil || len(*filter) == 0 {
		return true
	}
	return (*filter)[ev.Collection]
}

// subscribeRequest is the only frame clients send: it narrows the stream to
// the named collections
type subscribeRequest struct {
	Collections []string `json:"collections"`
}

// Hub owns the websocket connections of one API instance. Every mutation
// goes through the broker so clients on any instance see it.
type Hub struct {
	broker     Broker
	upgrader   websocket.Upgrader
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	done       chan struct{}
	count      atomic.Int32
}

func NewHub(broker Broker, allowedOrigins []string) *Hub {
	return &Hub{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Run delivers broker events to matching clients until ctx ends
func (h *Hub) Run(ctx context.Context) {
	events := h.broker.Subscribe(ctx)
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.count.Store(0)
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int32(len(h.clients)))
			logger.Debug("Realtime client connected", "userID", c.userID)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.count.Store(int32(len(h.clients)))
				logger.Debug("Realtime client disconnected", "userID", c.userID)
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			for c := range h.clients {
				if !c.wants(ev) {
					continue
				}
				select {
				case c.send <- ev:
				default:
					// client stopped reading
					delete(h.clients, c)
					close(c.send)
					h.count.Store(int32(len(h.clients)))
				}
			}
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish forwards a change to the broker. Failures are logged, never returned:
// realtime delivery is best effort and must not fail the mutation.
func (h *Hub) Publish(ctx context.Context, ev domain.ChangeEvent) {
	if err := h.broker.Publish(ctx, ev); err != nil {
		logger.WarnContext(ctx, "Failed to publish change event", "collection", ev.Collection, "id", ev.ID, "error", err)
	}
}

// ServeWS upgrades an authenticated request and streams events to it
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID int32) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "userID", userID, "error", err)
		return
	}

	c := &client{userID: userID, conn: conn, send: make(chan domain.ChangeEvent, clientBuffer)}
	if cols := r.URL.Query()["collection"]; len(cols) > 0 {
		c.setCollections(cols)
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go h.writePump(c)
	go h.readPump(c)
}

func (c *client) setCollections(cols []string) {
	filter := make(map[string]bool, len(cols))
	for _, col := range cols {
		filter[col] = true
	}
	c.collections.Store(&filter)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	for {
		var req subscribeRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Realtime read error", "userID", c.userID, "error", err)
			}
			return
		}
		c.setCollections(req.Collections)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
