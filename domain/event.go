package domain

import "time"

// Event is an inbound client action delivered by the transport.
type Event interface {
	Sender() Identity
}

// ChatEvent is a plain chat line.
type ChatEvent struct {
	From Identity
	Text string
	At   time.Time
}

func (e ChatEvent) Sender() Identity { return e.From }

// CommandEvent is a parsed slash-command.
type CommandEvent struct {
	From Identity
	Name string
	Args []string
	At   time.Time
}

func (e CommandEvent) Sender() Identity { return e.From }

// DeleteEvent asks for a message to be removed from the history buffer.
type DeleteEvent struct {
	From      Identity
	MessageID string
	At        time.Time
}

func (e DeleteEvent) Sender() Identity { return e.From }

// HistoryQuery asks for the most recent retained messages.
type HistoryQuery struct {
	From  Identity
	Limit int
}

func (e HistoryQuery) Sender() Identity { return e.From }

// MuteListQuery asks for the current mute registry contents.
type MuteListQuery struct {
	From Identity
	At   time.Time
}

func (e MuteListQuery) Sender() Identity { return e.From }

// Delivery is one outbound message with its routing. An empty Target
// means broadcast to every connected client.
type Delivery struct {
	Target  string
	Message ChatMessage
}

// Broadcast builds a Delivery addressed to everyone.
func Broadcast(msg ChatMessage) Delivery {
	return Delivery{Message: msg}
}

// To builds a Delivery addressed to a single player.
func To(name string, msg ChatMessage) Delivery {
	return Delivery{Target: name, Message: msg}
}
