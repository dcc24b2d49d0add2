// Package history keeps a bounded, insertion-ordered buffer of recent
// messages. Handles ordering and eviction only; nothing here is persisted.
package history

import (
	"sync"

	"chat-relay/domain"
)

// Buffer is a fixed-capacity FIFO of chat messages.
// Append and reads are atomic with respect to each other: no reader
// ever observes the buffer over capacity.
type Buffer struct {
	mu       sync.RWMutex
	messages []domain.ChatMessage
	capacity int
}

func NewBuffer(capacity int) *Buffer {
	return &Buffer{capacity: capacity}
}

// Append retains the message, evicting the oldest entry when full.
func (b *Buffer) Append(msg domain.ChatMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.messages) == b.capacity {
		b.messages = append(b.messages[1:], msg)
		return
	}
	b.messages = append(b.messages, msg)
}

// Recent returns the last min(limit, length) messages, oldest first.
func (b *Buffer) Recent(limit int) []domain.ChatMessage {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if limit > len(b.messages) {
		limit = len(b.messages)
	}
	if limit <= 0 {
		return nil
	}
	out := make([]domain.ChatMessage, limit)
	copy(out, b.messages[len(b.messages)-limit:])
	return out
}

// Remove drops the message with the given ID. Returns false if absent.
func (b *Buffer) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, msg := range b.messages {
		if msg.ID == id {
			b.messages = append(b.messages[:i], b.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports the number of retained messages.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.messages)
}
