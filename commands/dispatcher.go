// Package commands parses and routes slash-commands to permission-gated
// handlers. Handlers produce outbound deliveries and side effects; they
// never mutate anything when validation fails.
package commands

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/moderation"
	"chat-relay/mutes"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// ResponseUnknown is returned both for undefined commands and for commands
// the sender lacks permission for. Merging the two keeps command existence
// invisible to unauthorized callers.
const ResponseUnknown = "Unknown command or insufficient permission"

// Announcer publishes a cross-instance announcement. The implementation
// owns the local fallback on publish failure.
type Announcer interface {
	Publish(senderName, text string)
}

type tier int

const (
	tierAny tier = iota
	tierAdmin
	tierOwner
)

type command struct {
	tier    tier
	minArgs int
	usage   string
	handle  func(d *Dispatcher, sender domain.Identity, args []string, at time.Time) []domain.Delivery
}

type Dispatcher struct {
	roster    contract.IRoster
	oracle    contract.IPermissionOracle
	registry  *mutes.Registry
	actions   contract.IPlayerActions
	filter    *moderation.Filter
	announcer Announcer
	log       *slog.Logger
	table     map[string]command
}

func NewDispatcher(
	roster contract.IRoster,
	oracle contract.IPermissionOracle,
	registry *mutes.Registry,
	actions contract.IPlayerActions,
	filter *moderation.Filter,
	announcer Announcer,
	log *slog.Logger,
) *Dispatcher {
	d := &Dispatcher{
		roster:    roster,
		oracle:    oracle,
		registry:  registry,
		actions:   actions,
		filter:    filter,
		announcer: announcer,
		log:       log,
	}
	d.table = map[string]command{
		"whisper":   {tier: tierAny, minArgs: 2, usage: "Usage: /whisper <player> <message>", handle: (*Dispatcher).whisper},
		"w":         {tier: tierAny, minArgs: 2, usage: "Usage: /w <player> <message>", handle: (*Dispatcher).whisper},
		"mute":      {tier: tierAdmin, minArgs: 1, usage: "Usage: /mute <player> [reason]", handle: (*Dispatcher).mute},
		"unmute":    {tier: tierAdmin, minArgs: 1, usage: "Usage: /unmute <player>", handle: (*Dispatcher).unmute},
		"mutedlist": {tier: tierAdmin, handle: (*Dispatcher).mutedList},
		"warn":      {tier: tierAdmin, minArgs: 2, usage: "Usage: /warn <player> <message>", handle: (*Dispatcher).warn},
		"announce":  {tier: tierOwner, minArgs: 1, usage: "Usage: /announce <message>", handle: (*Dispatcher).announce},
		"bring":     {tier: tierAdmin, minArgs: 1, usage: "Usage: /bring <player>", handle: (*Dispatcher).bring},
		"kick":      {tier: tierAdmin, minArgs: 1, usage: "Usage: /kick <player> [reason]", handle: (*Dispatcher).kick},
	}
	return d
}

// Dispatch routes one command invocation. Command name matching is
// case-insensitive. Every failing validation produces exactly one System
// message back to the sender and no side effect.
func (d *Dispatcher) Dispatch(sender domain.Identity, name string, args []string, at time.Time) []domain.Delivery {
	cmd, ok := d.table[strings.ToLower(name)]
	if !ok || !d.allowed(sender, cmd.tier) {
		return d.replyTo(sender, ResponseUnknown, at)
	}
	if len(args) < cmd.minArgs {
		return d.replyTo(sender, cmd.usage, at)
	}
	return cmd.handle(d, sender, args, at)
}

// allowed resolves the sender's tier through the oracle. A failing oracle
// answers false, which lands on the generic unknown-command response.
func (d *Dispatcher) allowed(sender domain.Identity, t tier) bool {
	switch t {
	case tierAny:
		return true
	case tierAdmin:
		return d.oracle.IsAdmin(sender) || d.oracle.IsOwner(sender) || d.oracle.IsFounder(sender)
	case tierOwner:
		return d.oracle.IsOwner(sender) || d.oracle.IsFounder(sender)
	default:
		return false
	}
}

func (d *Dispatcher) badges(sender domain.Identity) domain.Badges {
	return domain.Badges{
		Admin:   d.oracle.IsAdmin(sender),
		Owner:   d.oracle.IsOwner(sender),
		Founder: d.oracle.IsFounder(sender),
	}
}

func (d *Dispatcher) replyTo(sender domain.Identity, text string, at time.Time) []domain.Delivery {
	return []domain.Delivery{domain.To(sender.Name, domain.SystemMessage(text, at))}
}

func (d *Dispatcher) notFound(sender domain.Identity, target string, at time.Time) []domain.Delivery {
	return d.replyTo(sender, fmt.Sprintf("Player %s is not online", target), at)
}

func (d *Dispatcher) whisper(sender domain.Identity, args []string, at time.Time) []domain.Delivery {
	target, ok := d.roster.FindByName(args[0])
	if !ok {
		return d.notFound(sender, args[0], at)
	}

	text := d.filter.Targeted(sender.ID, strings.Join(args[1:], " "), target.ID)
	msg := domain.ChatMessage{
		ID:           domain.NewMessageID(at, sender.Name),
		SenderName:   sender.Name,
		SenderID:     sender.ID,
		Text:         text,
		Timestamp:    at,
		Kind:         domain.KindWhisper,
		AuthorBadges: d.badges(sender),
		TargetName:   target.Name,
	}
	return []domain.Delivery{
		domain.To(sender.Name, msg),
		domain.To(target.Name, msg),
	}
}

func (d *Dispatcher) mute(sender domain.Identity, args []string, at time.Time) []domain.Delivery {
	target, ok := d.roster.FindByName(args[0])
	if !ok {
		return d.notFound(sender, args[0], at)
	}

	reason := strings.Join(args[1:], " ")
	d.registry.Mute(target.Name, sender.Name, reason, at)

	notice := fmt.Sprintf("You have been muted by %s", sender.Name)
	if reason != "" {
		notice = fmt.Sprintf("%s: %s", notice, reason)
	}
	return []domain.Delivery{
		domain.To(sender.Name, domain.SystemMessage(fmt.Sprintf("Muted %s", target.Name), at)),
		domain.To(target.Name, domain.SystemMessage(notice, at)),
	}
}

func (d *Dispatcher) unmute(sender domain.Identity, args []string, at time.Time) []domain.Delivery {
	if !d.registry.Unmute(args[0], sender.Name) {
		return d.replyTo(sender, fmt.Sprintf("%s is not muted", args[0]), at)
	}

	deliveries := d.replyTo(sender, fmt.Sprintf("Unmuted %s", args[0]), at)
	if target, online := d.roster.FindByName(args[0]); online {
		deliveries = append(deliveries,
			domain.To(target.Name, domain.SystemMessage("You have been unmuted", at)))
	}
	return deliveries
}

func (d *Dispatcher) mutedList(sender domain.Identity, _ []string, at time.Time) []domain.Delivery {
	records := d.registry.List()
	if len(records) == 0 {
		return d.replyTo(sender, "No muted players", at)
	}
	return d.replyTo(sender, renderMutedList(records), at)
}

func renderMutedList(records []domain.MuteRecord) string {
	builder := &strings.Builder{}
	table := tablewriter.NewWriter(builder)
	table.SetHeader([]string{"Player", "Muted By", "Reason", "Since"})
	table.AppendBulk(lo.Map(records, func(r domain.MuteRecord, _ int) []string {
		return []string{r.Name, r.MutedBy, r.Reason, r.Timestamp.UTC().Format("2006-01-02 15:04")}
	}))
	table.Render()
	return builder.String()
}

func (d *Dispatcher) warn(sender domain.Identity, args []string, at time.Time) []domain.Delivery {
	target, ok := d.roster.FindByName(args[0])
	if !ok {
		return d.notFound(sender, args[0], at)
	}

	text := strings.Join(args[1:], " ")
	d.log.Info("Player warned", "player", target.Name, "by", sender.Name, "message", text)
	return []domain.Delivery{
		domain.To(sender.Name, domain.SystemMessage(fmt.Sprintf("Warned %s", target.Name), at)),
		domain.To(target.Name, domain.SystemMessage(fmt.Sprintf("Warning from %s: %s", sender.Name, text), at)),
	}
}

func (d *Dispatcher) announce(sender domain.Identity, args []string, at time.Time) []domain.Delivery {
	text := strings.Join(args, " ")
	d.log.Info("Announcement published", "by", sender.Name)
	d.announcer.Publish(sender.Name, text)
	// Local delivery happens through the relay subscription, never here
	return nil
}

func (d *Dispatcher) bring(sender domain.Identity, args []string, at time.Time) []domain.Delivery {
	target, ok := d.roster.FindByName(args[0])
	if !ok {
		return d.notFound(sender, args[0], at)
	}

	d.actions.TeleportPlayerToAdmin(target.Name)
	return d.replyTo(sender, fmt.Sprintf("Bringing %s", target.Name), at)
}

func (d *Dispatcher) kick(sender domain.Identity, args []string, at time.Time) []domain.Delivery {
	target, ok := d.roster.FindByName(args[0])
	if !ok {
		return d.notFound(sender, args[0], at)
	}

	reason := strings.Join(args[1:], " ")
	if reason == "" {
		reason = fmt.Sprintf("Kicked by %s", sender.Name)
	}
	d.log.Info("Player kicked", "player", target.Name, "by", sender.Name, "reason", reason)
	d.actions.KickPlayer(target.Name, reason)
	return d.replyTo(sender, fmt.Sprintf("Kicked %s", target.Name), at)
}
