package domain

import "time"

// MuteRecord is a durable mute entry, keyed by the lower-cased player name.
// Mutes are permanent: there is no expiry in this design. Identity is the
// display name only, so a renamed account sheds its mute; this is a known
// limitation, not something the registry tries to compensate for.
type MuteRecord struct {
	Name      string    `json:"name"` // normalized, see NormalizeName
	MutedBy   string    `json:"muted_by"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
	Permanent bool      `json:"permanent"`
}
