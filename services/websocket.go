package services

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024 * 1024 // 1MB
)

// Message types exchanged with the browser shell.
const (
	MessageReady    = "ready"
	MessageEvent    = "event"
	MessageRender   = "render"
	MessageRedirect = "redirect"
	MessagePing     = "ping"
	MessagePong     = "pong"
)

// WebSocketMessage is the standard message format for WebSocket communication
type WebSocketMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage encodes data into a message of type typ.
func NewMessage(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WebSocketMessage{Type: typ, Data: raw})
}

// MessageHandler consumes the messages a client reads.
type MessageHandler interface {
	HandleMessage(msg WebSocketMessage)
}

// Client represents a connected WebSocket client (one browser tab)
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	Partition string
	Handler   MessageHandler
	Log       *logrus.Entry

	mu     sync.Mutex
	closed bool
}

// Deliver queues msg for writing. It reports false once the client is gone or
// its buffer is full.
func (c *Client) Deliver(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		c.Log.Warn("client send buffer full, dropping message")
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// ReadPump pumps messages from the WebSocket connection to the handler. It
// returns when the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Log.WithError(err).Warn("websocket error")
			}
			break
		}

		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			c.Log.WithError(err).Warn("error unmarshalling websocket message")
			continue
		}

		// Handle ping messages specially
		if wsMessage.Type == MessagePing {
			pong, err := NewMessage(MessagePong, map[string]string{"timestamp": time.Now().Format(time.RFC3339)})
			if err == nil {
				c.Deliver(pong)
			}
			continue
		}

		c.Log.WithField("type", wsMessage.Type).Debug("received message")
		c.Handler.HandleMessage(wsMessage)
	}
}

// WritePump pumps messages from the send queue to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per message; the shell parses each frame as JSON.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub maintains the set of active clients
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
	log        *logrus.Entry
}

// NewHub creates a new hub instance
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

// Register adds a client to the hub. A client registered after the hub has
// stopped is closed at once.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	return int(h.count.Load())
}

// Run starts the hub's main loop. When ctx is done every client is closed.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			h.log.WithField("partition", client.Partition).Debug("client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
				h.count.Store(int64(len(h.clients)))
				h.log.WithField("partition", client.Partition).Debug("client disconnected")
			}
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.count.Store(0)
			return
		}
	}
}
