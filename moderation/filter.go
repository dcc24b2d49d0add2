package moderation

import (
	"log/slog"

	"chat-relay/contract"

	"github.com/abadojack/whatlanggo"
)

// FailedFilterText is delivered in place of the original text when the
// filtering collaborator fails. Filtering failure degrades content, it
// never blocks delivery.
const FailedFilterText = "[Message failed to filter]"

// CensorFilter exposes the local Moderator as the content-filtering
// collaborator. The targeted variant applies the same censoring; recipient
// identity only matters to relationship-aware remote filters.
type CensorFilter struct {
	moderator *Moderator
}

func NewCensorFilter(moderator *Moderator) *CensorFilter {
	return &CensorFilter{moderator: moderator}
}

func (f *CensorFilter) FilterBroadcast(authorID int64, text string) (string, error) {
	censored, _ := f.moderator.Censor(text)
	return censored, nil
}

func (f *CensorFilter) FilterTargeted(authorID int64, text string, recipientID int64) (string, error) {
	censored, _ := f.moderator.Censor(text)
	return censored, nil
}

// Filter is the engine-facing adapter around the filtering collaborator.
// It never returns an error: a failing collaborator yields FailedFilterText.
type Filter struct {
	inner contract.IContentFilter
	log   *slog.Logger
}

func NewFilter(inner contract.IContentFilter, log *slog.Logger) *Filter {
	return &Filter{inner: inner, log: log}
}

// Broadcast filters text destined for every connected client.
func (f *Filter) Broadcast(authorID int64, text string) string {
	filtered, err := f.inner.FilterBroadcast(authorID, text)
	if err != nil {
		f.log.Warn("Broadcast filtering failed", "author_id", authorID, "error", err)
		return FailedFilterText
	}
	f.logCensored(authorID, text, filtered)
	return filtered
}

// Targeted filters text destined for a single recipient.
func (f *Filter) Targeted(authorID int64, text string, recipientID int64) string {
	filtered, err := f.inner.FilterTargeted(authorID, text, recipientID)
	if err != nil {
		f.log.Warn("Targeted filtering failed",
			"author_id", authorID, "recipient_id", recipientID, "error", err)
		return FailedFilterText
	}
	f.logCensored(authorID, text, filtered)
	return filtered
}

func (f *Filter) logCensored(authorID int64, original, filtered string) {
	if original == filtered {
		return
	}
	info := whatlanggo.Detect(original)
	f.log.Info("Message censored",
		"author_id", authorID,
		"lang", info.Lang.Iso6391())
}
