package runtime

import (
	"fmt"
	"log/slog"

	"chat-relay/commands"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/history"
	"chat-relay/moderation"
	"chat-relay/mutes"
	"chat-relay/ratelimit"
)

// Engine is the moderation pipeline. Each inbound event is handled by an
// independent concurrent handler invocation; shared state (mutes, rate
// windows, history) protects itself.
type Engine struct {
	log        *slog.Logger
	mutes      *mutes.Registry
	limiter    *ratelimit.Limiter
	filter     *moderation.Filter
	history    *history.Buffer
	transport  contract.ITransport
	dispatcher *commands.Dispatcher
	oracle     contract.IPermissionOracle
}

func NewEngine(
	log *slog.Logger,
	muteRegistry *mutes.Registry,
	limiter *ratelimit.Limiter,
	filter *moderation.Filter,
	buffer *history.Buffer,
	transport contract.ITransport,
	dispatcher *commands.Dispatcher,
	oracle contract.IPermissionOracle,
) *Engine {
	return &Engine{
		log:        log,
		mutes:      muteRegistry,
		limiter:    limiter,
		filter:     filter,
		history:    buffer,
		transport:  transport,
		dispatcher: dispatcher,
		oracle:     oracle,
	}
}

// HandleChat runs one chat line through the pipeline:
// mute check, rate limit, filter, history, fan-out.
// Rejected messages are dropped, never retried.
func (e *Engine) HandleChat(evt domain.ChatEvent) {
	sender := evt.From

	if record, muted := e.mutes.IsMuted(sender.Name); muted {
		notice := "You are muted"
		if record.Reason != "" {
			notice = fmt.Sprintf("You are muted: %s", record.Reason)
		}
		e.transport.SendTo(sender.Name, domain.SystemMessage(notice, evt.At))
		return
	}

	if !e.limiter.Admit(sender.ID, evt.At) {
		e.transport.SendTo(sender.Name,
			domain.SystemMessage("You are sending messages too quickly", evt.At))
		return
	}

	msg := domain.ChatMessage{
		ID:         domain.NewMessageID(evt.At, sender.Name),
		SenderName: sender.Name,
		SenderID:   sender.ID,
		Text:       e.filter.Broadcast(sender.ID, evt.Text),
		Timestamp:  evt.At,
		Kind:       domain.KindNormal,
		AuthorBadges: domain.Badges{
			Admin:   e.oracle.IsAdmin(sender),
			Owner:   e.oracle.IsOwner(sender),
			Founder: e.oracle.IsFounder(sender),
		},
	}

	e.history.Append(msg)
	e.transport.Broadcast(msg)
}

// HandleCommand dispatches a slash-command and routes its deliveries.
func (e *Engine) HandleCommand(evt domain.CommandEvent) {
	deliveries := e.dispatcher.Dispatch(evt.From, evt.Name, evt.Args, evt.At)
	for _, d := range deliveries {
		if d.Target == "" {
			e.transport.Broadcast(d.Message)
			continue
		}
		e.transport.SendTo(d.Target, d.Message)
	}
}

// HandleDelete removes a message from the history buffer. Admin only; the
// response for non-admins matches the unknown-command response so the
// action's existence is not leaked.
func (e *Engine) HandleDelete(evt domain.DeleteEvent) {
	sender := evt.From
	if !e.oracle.IsAdmin(sender) && !e.oracle.IsOwner(sender) && !e.oracle.IsFounder(sender) {
		e.transport.SendTo(sender.Name, domain.SystemMessage(commands.ResponseUnknown, evt.At))
		return
	}

	if e.history.Remove(evt.MessageID) {
		e.log.Info("Message deleted from history", "message_id", evt.MessageID, "by", sender.Name)
		e.transport.SendTo(sender.Name, domain.SystemMessage("Message deleted", evt.At))
		return
	}
	e.transport.SendTo(sender.Name, domain.SystemMessage("Message not found", evt.At))
}

// HandleHistoryQuery replays the most recent retained messages to the caller.
func (e *Engine) HandleHistoryQuery(evt domain.HistoryQuery) {
	limit := evt.Limit
	if limit <= 0 {
		limit = 50
	}
	for _, msg := range e.history.Recent(limit) {
		e.transport.SendTo(evt.From.Name, msg)
	}
}

// HandleMuteListQuery reuses the mutedlist command path, permission
// gating included.
func (e *Engine) HandleMuteListQuery(evt domain.MuteListQuery) {
	e.HandleCommand(domain.CommandEvent{From: evt.From, Name: "mutedlist", At: evt.At})
}
