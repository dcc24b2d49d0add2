//go:generate go run go.uber.org/mock/mockgen -source=mute.go -destination=../mocks/mock_mute_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"chat-relay/domain"

	"github.com/dgraph-io/badger/v4"
)

// snapshotKey is the single key holding the whole-registry mute snapshot.
// Each save supersedes the previous value entirely.
const snapshotKey = "mutes:snapshot"

type IMuteRepository interface {
	LoadSnapshot() ([]domain.MuteRecord, error)
	SaveSnapshot(records []domain.MuteRecord) error
}

type MuteRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMuteRepository(db *badger.DB, log *slog.Logger) MuteRepository {
	return MuteRepository{db: db, log: log}
}

// LoadSnapshot reads the last successfully saved registry snapshot.
// An absent key is not an error: a fresh install starts empty.
func (m MuteRepository) LoadSnapshot() ([]domain.MuteRecord, error) {
	var payload []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			payload = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		m.log.Info("No mute snapshot found, starting with an empty registry")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot read failed: %w", err)
	}

	var records []domain.MuteRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("snapshot decode failed: %w", err)
	}
	return records, nil
}

// SaveSnapshot overwrites the stored snapshot with the given records.
func (m MuteRepository) SaveSnapshot(records []domain.MuteRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("snapshot encode failed: %w", err)
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKey), payload)
	})
}
