// Package runtime wires the moderation pipeline together: session registry,
// engine, and supervised background workers. It orchestrates the system
// without containing domain rules.
package runtime

import (
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
)

// Registry tracks connected clients. It doubles as the roster collaborator
// (case-insensitive name lookup) and as the fan-out target set.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]session // keyed by normalized name
}

type session struct {
	identity domain.Identity
	sink     contract.ClientSink
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]session)}
}

// Subscribe registers a connected player's sink. A reconnect under the same
// name replaces the previous session.
func (r *Registry) Subscribe(identity domain.Identity, sink contract.ClientSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[domain.NormalizeName(identity.Name)] = session{identity: identity, sink: sink}
}

// Unsubscribe removes a player's session.
func (r *Registry) Unsubscribe(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, domain.NormalizeName(name))
}

// FindByName resolves a display name to a connected identity.
// Exact match on the normalized name; first match wins if duplicate
// display names ever collide on normalization.
func (r *Registry) FindByName(name string) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[domain.NormalizeName(name)]
	return s.identity, ok
}

// Broadcast delivers a message to every connected client.
func (r *Registry) Broadcast(msg domain.ChatMessage) {
	for _, sink := range r.snapshotSinks() {
		_ = sink.Send(msg)
	}
}

// SendTo delivers a message to one player. Returns false if not connected.
func (r *Registry) SendTo(name string, msg domain.ChatMessage) bool {
	r.mu.RLock()
	s, ok := r.sessions[domain.NormalizeName(name)]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	_ = s.sink.Send(msg)
	return true
}

// Count reports the number of connected clients.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// snapshotSinks copies the sink list so sends happen outside the lock.
// A slow client must not block Subscribe/Unsubscribe.
func (r *Registry) snapshotSinks() []contract.ClientSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sinks := make([]contract.ClientSink, 0, len(r.sessions))
	for _, s := range r.sessions {
		sinks = append(sinks, s.sink)
	}
	return sinks
}
