// Package ws is the thin websocket transport in front of the engine.
// It validates inbound frames, turns them into domain events, and writes
// outbound messages back to clients. No moderation logic lives here.
package ws

import (
	"strings"
	"time"

	"chat-relay/domain"
)

// inboundFrame is one client action. Chat text starting with '/' is
// parsed as a command.
type inboundFrame struct {
	Type      string `json:"type" validate:"required,oneof=chat delete history mutedlist"`
	Text      string `json:"text" validate:"omitempty,max=512"`
	MessageID string `json:"message_id" validate:"omitempty,max=128"`
	Limit     int    `json:"limit" validate:"gte=0,lte=100"`
}

type outboundBadges struct {
	Admin   bool `json:"admin,omitempty"`
	Owner   bool `json:"owner,omitempty"`
	Founder bool `json:"founder,omitempty"`
}

// outboundFrame mirrors domain.ChatMessage on the wire.
type outboundFrame struct {
	ID        string         `json:"id"`
	Sender    string         `json:"sender"`
	SenderID  int64          `json:"sender_id"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
	Kind      string         `json:"kind"`
	Target    string         `json:"target,omitempty"`
	Badges    outboundBadges `json:"badges"`
}

func toOutbound(msg domain.ChatMessage) outboundFrame {
	return outboundFrame{
		ID:        msg.ID,
		Sender:    msg.SenderName,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
		Kind:      msg.Kind.String(),
		Target:    msg.TargetName,
		Badges: outboundBadges{
			Admin:   msg.AuthorBadges.Admin,
			Owner:   msg.AuthorBadges.Owner,
			Founder: msg.AuthorBadges.Founder,
		},
	}
}

// parseCommand splits "/kick Bob too rude" into ("kick", ["Bob", "too", "rude"]).
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func isCommand(text string) bool {
	return strings.HasPrefix(text, "/")
}
