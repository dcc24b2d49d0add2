// Package mutes holds the durable set of muted identities. The in-memory
// map is the source of truth for the running process; persistence is
// best-effort catch-up handled by a supervised saver worker.
package mutes

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
)

// Registry is the process-wide mute registry. Mutations are serialized
// globally; every mutation raises the dirty signal so the saver worker
// persists a fresh whole-registry snapshot. The saver always reads the
// current state, so a slow save can never overwrite a newer one.
type Registry struct {
	mu      sync.Mutex
	records map[string]domain.MuteRecord
	dirty   chan struct{}
	log     *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		records: make(map[string]domain.MuteRecord),
		dirty:   make(chan struct{}, 1),
		log:     log,
	}
}

// Load replaces the registry contents with the last persisted snapshot.
// Called once at startup; failure or absence of prior data leaves the
// registry empty, which is not an error.
func (r *Registry) Load(store contract.IMuteStore) {
	records, err := store.LoadSnapshot()
	if err != nil {
		r.log.Warn("Mute snapshot load failed, starting empty", "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range records {
		r.records[domain.NormalizeName(record.Name)] = record
	}
	r.log.Info("Mute registry loaded", "count", len(records))
}

// IsMuted reports the mute record for a name, if any.
func (r *Registry) IsMuted(name string) (domain.MuteRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[domain.NormalizeName(name)]
	return record, ok
}

// Mute creates or replaces the record for a name. At most one record
// exists per normalized name.
func (r *Registry) Mute(name, by, reason string, at time.Time) domain.MuteRecord {
	normalized := domain.NormalizeName(name)
	record := domain.MuteRecord{
		Name:      normalized,
		MutedBy:   by,
		Reason:    reason,
		Timestamp: at,
		Permanent: true,
	}

	r.mu.Lock()
	r.records[normalized] = record
	r.markDirtyLocked()
	r.mu.Unlock()

	r.log.Info("Player muted", "player", normalized, "by", by, "reason", reason)
	return record
}

// Unmute removes the record for a name. Returns false if the name was
// never muted, in which case no persistence write is triggered.
func (r *Registry) Unmute(name, by string) bool {
	normalized := domain.NormalizeName(name)

	r.mu.Lock()
	_, ok := r.records[normalized]
	if ok {
		delete(r.records, normalized)
		r.markDirtyLocked()
	}
	r.mu.Unlock()

	if ok {
		r.log.Info("Player unmuted", "player", normalized, "by", by)
	}
	return ok
}

// List returns all records sorted by name.
func (r *Registry) List() []domain.MuteRecord {
	r.mu.Lock()
	records := make([]domain.MuteRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record)
	}
	r.mu.Unlock()

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records
}

// Dirty exposes the save signal drained by the saver worker.
func (r *Registry) Dirty() <-chan struct{} {
	return r.dirty
}

// markDirtyLocked raises the save signal without blocking the mutating
// caller. The signal coalesces: the saver persists the latest state.
func (r *Registry) markDirtyLocked() {
	select {
	case r.dirty <- struct{}{}:
	default:
	}
}
