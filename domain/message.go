// Package domain contains core concepts of the moderation and relay engine.
// This file defines chat messages and related rules.
// Messages are immutable once constructed.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies an outbound chat message.
type Kind int

const (
	KindNormal Kind = iota
	KindWhisper
	KindSystem
	KindAnnouncement
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindWhisper:
		return "whisper"
	case KindSystem:
		return "system"
	case KindAnnouncement:
		return "announcement"
	default:
		return "unknown"
	}
}

// Badges capture the sender's roles at send time.
type Badges struct {
	Admin   bool
	Owner   bool
	Founder bool
}

// Identity is a connected player as seen by the roster.
// ID 0 is reserved for system-originated messages.
type Identity struct {
	ID   int64
	Name string
}

// ChatMessage is an immutable chat event.
type ChatMessage struct {
	ID           string // derived from send time and sender identity
	SenderName   string
	SenderID     int64
	Text         string // post-filter
	Timestamp    time.Time
	Kind         Kind
	AuthorBadges Badges
	TargetName   string // set for whispers only
}

// NewMessageID builds a message identifier from the send time and the
// normalized sender name. The 19-digit zero padding keeps identifiers
// lexicographically sorted by time.
func NewMessageID(at time.Time, senderName string) string {
	return fmt.Sprintf("%019d:%s", at.UnixNano(), NormalizeName(senderName))
}

// NormalizeName is the identity normalization used across the engine:
// mutes, roster lookups and session keys all match case-insensitively.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// SystemMessage builds a System-kind message addressed at nobody in particular.
func SystemMessage(text string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:         NewMessageID(at, "system"),
		SenderName: "Server",
		SenderID:   0,
		Text:       text,
		Timestamp:  at,
		Kind:       KindSystem,
	}
}
