package ws

import (
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type recordedEvents struct {
	mu       sync.Mutex
	chats    []domain.ChatEvent
	commands []domain.CommandEvent
	deletes  []domain.DeleteEvent
}

func (r *recordedEvents) HandleChat(evt domain.ChatEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats = append(r.chats, evt)
}

func (r *recordedEvents) HandleCommand(evt domain.CommandEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, evt)
}

func (r *recordedEvents) HandleDelete(evt domain.DeleteEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, evt)
}

func (r *recordedEvents) HandleHistoryQuery(domain.HistoryQuery)   {}
func (r *recordedEvents) HandleMuteListQuery(domain.MuteListQuery) {}

type recordedSessions struct {
	mu           sync.Mutex
	subscribed   []string
	unsubscribed []string
}

func (s *recordedSessions) Subscribe(identity domain.Identity, _ contract.ClientSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed = append(s.subscribed, identity.Name)
}

func (s *recordedSessions) Unsubscribe(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribed = append(s.unsubscribed, name)
}

func dial(t *testing.T, serverURL, name string) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(serverURL, "http", "ws", 1) + "?name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_RoutesFrames(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	engine := &recordedEvents{}
	sessions := &recordedSessions{}

	server := httptest.NewServer(NewHub(engine, sessions, log))
	defer server.Close()

	conn := dial(t, server.URL, "Alice")

	req.NoError(conn.WriteJSON(map[string]any{"type": "chat", "text": "hello there"}))
	req.NoError(conn.WriteJSON(map[string]any{"type": "chat", "text": "/w Bob psst"}))
	req.NoError(conn.WriteJSON(map[string]any{"type": "delete", "message_id": "msg-1"}))

	req.Eventually(func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return len(engine.chats) == 1 && len(engine.commands) == 1 && len(engine.deletes) == 1
	}, 2*time.Second, 10*time.Millisecond)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	req.Equal("hello there", engine.chats[0].Text)
	req.Equal("Alice", engine.chats[0].From.Name)
	req.Equal("w", engine.commands[0].Name)
	req.Equal([]string{"Bob", "psst"}, engine.commands[0].Args)
	req.Equal("msg-1", engine.deletes[0].MessageID)
}

func TestHub_SubscribeLifecycle(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sessions := &recordedSessions{}

	server := httptest.NewServer(NewHub(&recordedEvents{}, sessions, log))
	defer server.Close()

	conn := dial(t, server.URL, "Alice")
	req.Eventually(func() bool {
		sessions.mu.Lock()
		defer sessions.mu.Unlock()
		return len(sessions.subscribed) == 1
	}, 2*time.Second, 10*time.Millisecond)

	req.NoError(conn.Close())
	req.Eventually(func() bool {
		sessions.mu.Lock()
		defer sessions.mu.Unlock()
		return len(sessions.unsubscribed) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsMissingName(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	server := httptest.NewServer(NewHub(&recordedEvents{}, &recordedSessions{}, log))
	defer server.Close()

	wsURL := strings.Replace(server.URL, "http", "ws", 1)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	req.Error(err)
	req.NotNil(resp)
	req.Equal(400, resp.StatusCode)
}

func TestParseCommand(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		input    string
		wantName string
		wantArgs []string
	}{
		{name: "Command with args", input: "/kick Bob too rude", wantName: "kick", wantArgs: []string{"Bob", "too", "rude"}},
		{name: "Command without args", input: "/mutedlist", wantName: "mutedlist", wantArgs: []string{}},
		{name: "Extra whitespace", input: "/w   Bob   hi", wantName: "w", wantArgs: []string{"Bob", "hi"}},
		{name: "Bare slash", input: "/", wantName: "", wantArgs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args := parseCommand(tt.input)
			req.Equal(tt.wantName, name)
			req.Equal(tt.wantArgs, args)
		})
	}
}
