package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	publishErr error
	published  [][]byte
	topics     []string
}

func (b *fakeBus) Publish(_ context.Context, topic string, payload []byte) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.topics = append(b.topics, topic)
	b.published = append(b.published, payload)
	return nil
}

func (b *fakeBus) Subscribe(context.Context, string, func([]byte)) error {
	return nil
}

type fakeTransport struct {
	broadcasts []domain.ChatMessage
}

func (t *fakeTransport) Broadcast(msg domain.ChatMessage) {
	t.broadcasts = append(t.broadcasts, msg)
}

func (t *fakeTransport) SendTo(string, domain.ChatMessage) bool { return true }

func newTestRelay(bus *fakeBus, transport *fakeTransport) *Relay {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewRelay(bus, transport, time.Second, log)
}

func TestRelay_PublishSuccessNoLocalSend(t *testing.T) {
	req := require.New(t)
	bus := &fakeBus{}
	transport := &fakeTransport{}
	r := newTestRelay(bus, transport)

	r.Publish("Owner", "maintenance at noon")

	req.Len(bus.published, 1)
	req.Equal([]string{Topic}, bus.topics)
	// Local delivery only happens through the subscription callback
	req.Empty(transport.broadcasts)

	var p payload
	req.NoError(json.Unmarshal(bus.published[0], &p))
	req.Equal("Owner", p.Sender)
	req.Equal("maintenance at noon", p.Text)
}

func TestRelay_PublishFailureFallsBackLocally(t *testing.T) {
	req := require.New(t)
	bus := &fakeBus{publishErr: errors.ErrBusClosed}
	transport := &fakeTransport{}
	r := newTestRelay(bus, transport)

	r.Publish("Owner", "maintenance at noon")

	// Exactly one local Announcement, zero successful propagation
	req.Empty(bus.published)
	req.Len(transport.broadcasts, 1)
	msg := transport.broadcasts[0]
	req.Equal(domain.KindAnnouncement, msg.Kind)
	req.Equal("Owner", msg.SenderName)
	req.EqualValues(0, msg.SenderID)
	req.Equal("maintenance at noon", msg.Text)
}

func TestRelay_OnReceive(t *testing.T) {
	req := require.New(t)
	transport := &fakeTransport{}
	r := newTestRelay(&fakeBus{}, transport)

	data, err := json.Marshal(payload{Sender: "Owner", Text: "hello"})
	req.NoError(err)
	r.OnReceive(data)

	req.Len(transport.broadcasts, 1)
	req.Equal(domain.KindAnnouncement, transport.broadcasts[0].Kind)
	req.Equal("hello", transport.broadcasts[0].Text)
}

func TestRelay_OnReceiveIgnoresMalformed(t *testing.T) {
	req := require.New(t)
	transport := &fakeTransport{}
	r := newTestRelay(&fakeBus{}, transport)

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "Invalid JSON", payload: []byte("{nope")},
		{name: "Missing sender", payload: []byte(`{"text":"hello"}`)},
		{name: "Missing text", payload: []byte(`{"sender":"Owner"}`)},
		{name: "Empty payload", payload: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.OnReceive(tt.payload)
			req.Empty(transport.broadcasts)
		})
	}
}
