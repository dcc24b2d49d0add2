package workers

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/mutes"
)

// Ensure *SnapshotSaver implements the contract.Worker interface at compile time.
var _ contract.Worker = (*SnapshotSaver)(nil)

// SnapshotSaver drains the mute registry's dirty signal and persists a
// whole-registry snapshot for each one. Saves run on this single goroutine,
// so they are serialized in mutation order; the registry state is read at
// save time, which makes the write last-wins by construction. Save failures
// are logged and never propagate to the mutating caller.
type SnapshotSaver struct {
	registry *mutes.Registry
	store    contract.IMuteStore
	log      *slog.Logger
}

func NewSnapshotSaver(registry *mutes.Registry, store contract.IMuteStore, log *slog.Logger) *SnapshotSaver {
	return &SnapshotSaver{registry: registry, store: store, log: log}
}

func (w *SnapshotSaver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return nil
		case <-w.registry.Dirty():
			records := w.registry.List()
			if err := w.store.SaveSnapshot(records); err != nil {
				w.log.Error("Mute snapshot save failed", "count", len(records), "error", err)
				continue
			}
			w.log.Debug("Mute snapshot saved", "count", len(records))
		}
	}
}
