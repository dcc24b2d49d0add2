package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"chat-relay/domain"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10
	sendBufferSize = 64
)

// Client is one connected websocket session. Send never blocks the
// caller: a client that cannot keep up loses messages.
type Client struct {
	sessionID string
	identity  domain.Identity
	conn      *websocket.Conn
	send      chan []byte
	log       *slog.Logger

	mu     sync.Mutex
	closed bool
}

func newClient(sessionID string, identity domain.Identity, conn *websocket.Conn, log *slog.Logger) *Client {
	return &Client{
		sessionID: sessionID,
		identity:  identity,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		log:       log,
	}
}

// Send implements contract.ClientSink. Broadcasts run on other users'
// goroutines and may hold a sink snapshot taken before this client
// disconnected, so a Send racing close must degrade to a silent drop.
func (c *Client) Send(msg domain.ChatMessage) error {
	data, err := json.Marshal(toOutbound(msg))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("Client send buffer full, dropping message",
			"session", c.sessionID, "player", c.identity.Name)
	}
	return nil
}

// close stops the write pump. Safe to call once per connection; Send
// calls arriving afterwards are dropped instead of hitting the closed
// channel.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump drains the send buffer onto the connection and keeps the
// connection alive with pings. One writer goroutine per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
