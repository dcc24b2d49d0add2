// Package relay propagates administrator announcements across server
// instances. Delivery is best-effort: duplicates and losses are tolerated
// by consumers, and a failed publish degrades to a local-only broadcast.
package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
)

// Topic is the bus channel shared by all instances.
const Topic = "chat:announce"

type payload struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type Relay struct {
	bus            contract.IBus
	transport      contract.ITransport
	log            *slog.Logger
	publishTimeout time.Duration
	now            func() time.Time
}

func NewRelay(bus contract.IBus, transport contract.ITransport, publishTimeout time.Duration, log *slog.Logger) *Relay {
	return &Relay{
		bus:            bus,
		transport:      transport,
		log:            log,
		publishTimeout: publishTimeout,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Publish broadcasts an announcement to every instance. On success, local
// clients are reached through the subscription callback like everyone
// else's: single code path, no double-send. On failure, the announcement
// is delivered to local clients only so it is not silently lost here.
func (r *Relay) Publish(senderName, text string) {
	data, err := json.Marshal(payload{Sender: senderName, Text: text})
	if err != nil {
		r.log.Error("Announcement encode failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.publishTimeout)
	defer cancel()

	if err := r.bus.Publish(ctx, Topic, data); err != nil {
		r.log.Warn("Cross-instance publish failed, falling back to local broadcast",
			"sender", senderName, "error", err)
		r.transport.Broadcast(r.message(senderName, text))
		return
	}
	r.log.Info("Announcement relayed", "sender", senderName)
}

// OnReceive handles a payload published by any instance, including this
// one. Malformed payloads are ignored.
func (r *Relay) OnReceive(data []byte) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		r.log.Debug("Ignoring malformed announcement payload", "error", err)
		return
	}
	if p.Sender == "" || p.Text == "" {
		r.log.Debug("Ignoring announcement with missing fields")
		return
	}
	r.transport.Broadcast(r.message(p.Sender, p.Text))
}

func (r *Relay) message(senderName, text string) domain.ChatMessage {
	at := r.now()
	return domain.ChatMessage{
		ID:         domain.NewMessageID(at, senderName),
		SenderName: senderName,
		SenderID:   0,
		Text:       text,
		Timestamp:  at,
		Kind:       domain.KindAnnouncement,
	}
}
