//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"
)

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// ClientSink is one connected client's outbound channel.
type ClientSink interface {
	Send(msg domain.ChatMessage) error
}

// ITransport fans outbound messages out to connected clients.
type ITransport interface {
	Broadcast(msg domain.ChatMessage)
	// SendTo delivers to one player by name, case-insensitive.
	// Returns false if the player is not connected.
	SendTo(name string, msg domain.ChatMessage) bool
}

// IRoster resolves a display name to a connected identity.
// Matching is case-insensitive; the first match wins if duplicates exist.
type IRoster interface {
	FindByName(name string) (domain.Identity, bool)
}

// IPermissionOracle classifies identities. It is trusted input: answers are
// not authenticated. A failing oracle must answer false, never error.
type IPermissionOracle interface {
	IsAdmin(id domain.Identity) bool
	IsOwner(id domain.Identity) bool
	IsFounder(id domain.Identity) bool
}

// IContentFilter is the fallible content-filtering collaborator.
// The moderation.Filter adapter turns failures into a sentinel text.
type IContentFilter interface {
	FilterBroadcast(authorID int64, text string) (string, error)
	FilterTargeted(authorID int64, text string, recipientID int64) (string, error)
}

// IMuteStore persists the mute registry as a whole-registry snapshot.
type IMuteStore interface {
	LoadSnapshot() ([]domain.MuteRecord, error)
	SaveSnapshot(records []domain.MuteRecord) error
}

// IBus is the cross-instance broadcast substrate. Best-effort,
// at-most-once per hop, no ordering guarantee.
type IBus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error
}

// IPlayerActions are delegated admin side effects. Fire-and-forget:
// the engine does not await or verify completion.
type IPlayerActions interface {
	TeleportPlayerToAdmin(targetName string)
	KickPlayer(targetName, reason string)
}
