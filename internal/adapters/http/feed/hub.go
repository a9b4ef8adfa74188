// Package feed streams session events to browser clients over websockets.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/pitwall/internal/domain/speech"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Voice lists are small; anything bigger is not ours.
	maxMessageSize = 64 * 1024

	defaultSendBuffer = 256
)

// Message types pushed to clients.
const (
	TypeTelemetry = "telemetry"
	TypeAdvisory  = "advisory"
	TypeSpeak     = "speak"
	TypeCancel    = "cancel"
	TypeDebrief   = "debrief"
	TypeSession   = "session"
)

// TypeVoices is the one message clients send: their synthesizer voice list.
const TypeVoices = "voices"

// ErrClosed is returned when the hub no longer accepts clients.
var ErrClosed = errors.New("feed hub closed")

// Message is the envelope for every frame on the socket.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type inbound struct {
	Type   string        `json:"type"`
	Voices []speech.Voice `json:"voices"`
}

// VoicesHandler receives voice lists reported by clients.
type VoicesHandler func(ctx context.Context, voices []speech.Voice)

var upgrader = websocket.Upgrader{
	// the dashboard may be served from another origin during development
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu       sync.RWMutex
	onVoices VoicesHandler

	sendBuffer int
	logger     logger.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithSendBuffer sets the per-client outbound buffer.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// NewHub creates a hub. Run must be called before clients can connect.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		sendBuffer: defaultSendBuffer,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnVoices installs the handler for client voice lists.
func (h *Hub) OnVoices(fn VoicesHandler) {
	h.mu.Lock()
	h.onVoices = fn
	h.mu.Unlock()
}

// Run registers and unregisters clients until ctx ends, then disconnects them all.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.UpdateFeedClients(n)
			h.logger.Info(ctx, "client registered", logger.String("client", c.id))

		case c := <-h.unregister:
			h.remove(ctx, c)

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			metrics.UpdateFeedClients(0)
			return
		}
	}
}

func (h *Hub) remove(ctx context.Context, c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		metrics.UpdateFeedClients(n)
		h.logger.Info(ctx, "client unregistered", logger.String("client", c.id))
	}
}

// Broadcast sends a message to every client. Slow clients drop the message
// rather than stall the session.
func (h *Hub) Broadcast(typ string, data any) error {
	payload, err := json.Marshal(Message{Type: typ, Data: data})
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			metrics.RecordFeedDrop()
		}
	}
	return nil
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) voices(ctx context.Context, vs []speech.Voice) {
	h.mu.RLock()
	fn := h.onVoices
	h.mu.RUnlock()
	if fn != nil {
		fn(ctx, vs)
	}
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, ErrClosed.Error(), http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		id:   uuid.NewString(),
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// readPump reads voice reports until the connection drops.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	ctx := context.Background()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn(ctx, "websocket read failed", logger.String("client", c.id), logger.Error(err))
			}
			return
		}
		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.hub.logger.Debug(ctx, "ignoring malformed client message", logger.String("client", c.id))
			continue
		}
		if msg.Type == TypeVoices {
			c.hub.voices(ctx, msg.Voices)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
