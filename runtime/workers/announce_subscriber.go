package workers

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/relay"
)

var _ contract.Worker = (*AnnounceSubscriber)(nil)

// AnnounceSubscriber keeps this instance subscribed to the announcement
// topic. A dropped bus connection surfaces as an error so the supervisor
// restarts the subscription.
type AnnounceSubscriber struct {
	bus   contract.IBus
	relay *relay.Relay
	log   *slog.Logger
}

func NewAnnounceSubscriber(bus contract.IBus, r *relay.Relay, log *slog.Logger) *AnnounceSubscriber {
	return &AnnounceSubscriber{bus: bus, relay: r, log: log}
}

func (w *AnnounceSubscriber) Run(ctx context.Context) error {
	err := w.bus.Subscribe(ctx, relay.Topic, w.relay.OnReceive)
	if ctx.Err() != nil {
		w.log.Debug("Stopping worker")
		return nil
	}
	return err
}
