package commands

import (
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/moderation"
	"chat-relay/mutes"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fakeRoster struct {
	online map[string]domain.Identity
}

func (r *fakeRoster) FindByName(name string) (domain.Identity, bool) {
	id, ok := r.online[domain.NormalizeName(name)]
	return id, ok
}

type fakeOracle struct {
	admins, owners, founders map[string]bool
}

func (o *fakeOracle) IsAdmin(id domain.Identity) bool   { return o.admins[id.Name] }
func (o *fakeOracle) IsOwner(id domain.Identity) bool   { return o.owners[id.Name] }
func (o *fakeOracle) IsFounder(id domain.Identity) bool { return o.founders[id.Name] }

type fakeActions struct {
	teleported []string
	kicked     []string
	reasons    []string
}

func (a *fakeActions) TeleportPlayerToAdmin(target string) {
	a.teleported = append(a.teleported, target)
}

func (a *fakeActions) KickPlayer(target, reason string) {
	a.kicked = append(a.kicked, target)
	a.reasons = append(a.reasons, reason)
}

type fakeAnnouncer struct {
	senders []string
	texts   []string
}

func (a *fakeAnnouncer) Publish(sender, text string) {
	a.senders = append(a.senders, sender)
	a.texts = append(a.texts, text)
}

type harness struct {
	dispatcher *Dispatcher
	registry   *mutes.Registry
	actions    *fakeActions
	announcer  *fakeAnnouncer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	mod, err := moderation.NewModerator([]string{"badger"}, '*', log)
	require.NoError(t, err)
	filter := moderation.NewFilter(moderation.NewCensorFilter(&mod), log)

	roster := &fakeRoster{online: map[string]domain.Identity{
		"admin": {ID: 1, Name: "Admin"},
		"alice": {ID: 2, Name: "Alice"},
		"bob":   {ID: 3, Name: "Bob"},
		"owner": {ID: 4, Name: "Owner"},
	}}
	oracle := &fakeOracle{
		admins:   map[string]bool{"Admin": true},
		owners:   map[string]bool{"Owner": true},
		founders: map[string]bool{},
	}

	registry := mutes.NewRegistry(log)
	actions := &fakeActions{}
	announcer := &fakeAnnouncer{}

	return &harness{
		dispatcher: NewDispatcher(roster, oracle, registry, actions, filter, announcer, log),
		registry:   registry,
		actions:    actions,
		announcer:  announcer,
	}
}

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestDispatcher_PermissionDeniedMatchesUnknownCommand(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	alice := domain.Identity{ID: 2, Name: "Alice"}

	denied := h.dispatcher.Dispatch(alice, "mute", []string{"Bob", "spam"}, testTime)
	unknown := h.dispatcher.Dispatch(alice, "foo", nil, testTime)

	req.Len(denied, 1)
	req.Len(unknown, 1)
	req.Equal(unknown[0].Message.Text, denied[0].Message.Text)
	req.Equal("Alice", denied[0].Target)

	// No mutation happened
	_, muted := h.registry.IsMuted("Bob")
	req.False(muted)
}

func TestDispatcher_Whisper(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	alice := domain.Identity{ID: 2, Name: "Alice"}

	deliveries := h.dispatcher.Dispatch(alice, "w", []string{"bob", "hello", "there"}, testTime)

	req.Len(deliveries, 2)
	targets := []string{deliveries[0].Target, deliveries[1].Target}
	req.ElementsMatch([]string{"Alice", "Bob"}, targets)
	for _, d := range deliveries {
		req.Equal(domain.KindWhisper, d.Message.Kind)
		req.Equal("hello there", d.Message.Text)
		req.Equal("Bob", d.Message.TargetName)
		req.Equal("Alice", d.Message.SenderName)
	}
}

func TestDispatcher_WhisperValidation(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	alice := domain.Identity{ID: 2, Name: "Alice"}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "Too few arguments", args: []string{"bob"}, want: "Usage: /w <player> <message>"},
		{name: "Target offline", args: []string{"ghost", "hi"}, want: "Player ghost is not online"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deliveries := h.dispatcher.Dispatch(alice, "w", tt.args, testTime)
			req.Len(deliveries, 1)
			req.Equal("Alice", deliveries[0].Target)
			req.Equal(domain.KindSystem, deliveries[0].Message.Kind)
			req.Equal(tt.want, deliveries[0].Message.Text)
		})
	}
}

func TestDispatcher_MuteAndUnmute(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	admin := domain.Identity{ID: 1, Name: "Admin"}

	// Case-insensitive command matching
	deliveries := h.dispatcher.Dispatch(admin, "MUTE", []string{"bob", "too", "loud"}, testTime)
	req.Len(deliveries, 2)

	record, muted := h.registry.IsMuted("Bob")
	req.True(muted)
	req.Equal("Admin", record.MutedBy)
	req.Equal("too loud", record.Reason)

	deliveries = h.dispatcher.Dispatch(admin, "unmute", []string{"bob"}, testTime)
	req.Len(deliveries, 2) // ack to sender plus notice to online target
	_, muted = h.registry.IsMuted("Bob")
	req.False(muted)
}

func TestDispatcher_UnmuteNotMuted(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	admin := domain.Identity{ID: 1, Name: "Admin"}

	deliveries := h.dispatcher.Dispatch(admin, "unmute", []string{"bob"}, testTime)
	req.Len(deliveries, 1)
	req.Equal("bob is not muted", deliveries[0].Message.Text)
}

func TestDispatcher_MutedList(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	admin := domain.Identity{ID: 1, Name: "Admin"}

	deliveries := h.dispatcher.Dispatch(admin, "mutedlist", nil, testTime)
	req.Len(deliveries, 1)
	req.Equal("No muted players", deliveries[0].Message.Text)

	h.dispatcher.Dispatch(admin, "mute", []string{"bob", "spam"}, testTime)
	deliveries = h.dispatcher.Dispatch(admin, "mutedlist", nil, testTime)
	req.Len(deliveries, 1)
	req.Contains(deliveries[0].Message.Text, "bob")
	req.Contains(deliveries[0].Message.Text, "spam")
}

func TestDispatcher_Warn(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	admin := domain.Identity{ID: 1, Name: "Admin"}

	deliveries := h.dispatcher.Dispatch(admin, "warn", []string{"alice", "be", "nice"}, testTime)
	req.Len(deliveries, 2)
	req.Equal("Warned Alice", deliveries[0].Message.Text)
	req.Equal("Warning from Admin: be nice", deliveries[1].Message.Text)
	req.Equal("Alice", deliveries[1].Target)
}

func TestDispatcher_KickDefaultReason(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	admin := domain.Identity{ID: 1, Name: "Admin"}

	h.dispatcher.Dispatch(admin, "kick", []string{"bob"}, testTime)
	req.Equal([]string{"Bob"}, h.actions.kicked)
	req.Equal([]string{"Kicked by Admin"}, h.actions.reasons)

	h.dispatcher.Dispatch(admin, "kick", []string{"alice", "griefing"}, testTime)
	req.Equal([]string{"Kicked by Admin", "griefing"}, h.actions.reasons)
}

func TestDispatcher_Bring(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	admin := domain.Identity{ID: 1, Name: "Admin"}

	deliveries := h.dispatcher.Dispatch(admin, "bring", []string{"alice"}, testTime)
	req.Equal([]string{"Alice"}, h.actions.teleported)
	req.Len(deliveries, 1)
	req.Equal("Bringing Alice", deliveries[0].Message.Text)
}

func TestDispatcher_AnnounceTier(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)

	// Admins are below the owner tier
	admin := domain.Identity{ID: 1, Name: "Admin"}
	deliveries := h.dispatcher.Dispatch(admin, "announce", []string{"maintenance"}, testTime)
	req.Len(deliveries, 1)
	req.Equal(ResponseUnknown, deliveries[0].Message.Text)
	req.Empty(h.announcer.texts)

	owner := domain.Identity{ID: 4, Name: "Owner"}
	deliveries = h.dispatcher.Dispatch(owner, "announce", []string{"maintenance", "soon"}, testTime)
	// Local delivery only happens through the relay subscription
	req.Empty(deliveries)
	req.Equal([]string{"maintenance soon"}, h.announcer.texts)
	req.Equal([]string{"Owner"}, h.announcer.senders)
}

func TestDispatcher_WhisperIsFiltered(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	alice := domain.Identity{ID: 2, Name: "Alice"}

	deliveries := h.dispatcher.Dispatch(alice, "whisper", []string{"bob", "you", "badger"}, testTime)
	req.Len(deliveries, 2)
	req.Equal("you ******", deliveries[0].Message.Text)
}
