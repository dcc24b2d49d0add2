package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// EventHandler is the engine surface the transport needs.
type EventHandler interface {
	HandleChat(evt domain.ChatEvent)
	HandleCommand(evt domain.CommandEvent)
	HandleDelete(evt domain.DeleteEvent)
	HandleHistoryQuery(evt domain.HistoryQuery)
	HandleMuteListQuery(evt domain.MuteListQuery)
}

// Sessions is the registry surface the transport needs.
type Sessions interface {
	Subscribe(identity domain.Identity, sink contract.ClientSink)
	Unsubscribe(name string)
}

// Hub upgrades connections and runs one read loop per client. Handlers
// run on the connection's goroutine, so different users are naturally
// concurrent while one user's events stay ordered.
type Hub struct {
	engine   EventHandler
	sessions Sessions
	log      *slog.Logger
	validate *validator.Validate
	upgrader websocket.Upgrader
	nextID   atomic.Int64
}

func NewHub(engine EventHandler, sessions Sessions, log *slog.Logger) *Hub {
	return &Hub{
		engine:   engine,
		sessions: sessions,
		log:      log,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeHTTP accepts one client connection. The display name comes from the
// query string; authenticating it is the caller's concern, not ours.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	identity := domain.Identity{ID: h.nextID.Add(1), Name: name}
	client := newClient(uuid.NewString(), identity, conn, h.log)

	h.sessions.Subscribe(identity, client)
	h.log.Info("Client connected", "player", identity.Name, "session", client.sessionID)

	go client.writePump()
	h.readPump(client)

	h.sessions.Unsubscribe(identity.Name)
	client.close()
	h.log.Info("Client disconnected", "player", identity.Name, "session", client.sessionID)
}

func (h *Hub) readPump(client *Client) {
	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleFrame(client, data)
	}
}

func (h *Hub) handleFrame(client *Client, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		h.reject(client, "Malformed frame")
		return
	}
	if err := h.validate.Struct(frame); err != nil {
		h.reject(client, "Invalid frame")
		return
	}

	now := time.Now().UTC()
	sender := client.identity

	switch frame.Type {
	case "chat":
		if frame.Text == "" {
			h.reject(client, "Empty message")
			return
		}
		if isCommand(frame.Text) {
			name, args := parseCommand(frame.Text)
			if name == "" {
				h.reject(client, "Empty command")
				return
			}
			h.engine.HandleCommand(domain.CommandEvent{From: sender, Name: name, Args: args, At: now})
			return
		}
		h.engine.HandleChat(domain.ChatEvent{From: sender, Text: frame.Text, At: now})
	case "delete":
		h.engine.HandleDelete(domain.DeleteEvent{From: sender, MessageID: frame.MessageID, At: now})
	case "history":
		h.engine.HandleHistoryQuery(domain.HistoryQuery{From: sender, Limit: frame.Limit})
	case "mutedlist":
		h.engine.HandleMuteListQuery(domain.MuteListQuery{From: sender, At: now})
	}
}

func (h *Hub) reject(client *Client, reason string) {
	_ = client.Send(domain.SystemMessage(reason, time.Now().UTC()))
}
