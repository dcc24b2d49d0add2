// Package roles backs the permission oracle with local role data. The
// oracle is trusted input: answers are not authenticated, and any failure
// to load role data degrades to answering false everywhere.
package roles

import (
	"log/slog"

	"chat-relay/domain"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Admins   []string `envconfig:"CHAT_ADMINS"`
	Owners   []string `envconfig:"CHAT_OWNERS"`
	Founders []string `envconfig:"CHAT_FOUNDERS"`
}

type Oracle struct {
	admins   map[string]struct{}
	owners   map[string]struct{}
	founders map[string]struct{}
}

func NewOracle(admins, owners, founders []string) *Oracle {
	return &Oracle{
		admins:   toSet(admins),
		owners:   toSet(owners),
		founders: toSet(founders),
	}
}

// FromEnv loads role lists from CHAT_ADMINS / CHAT_OWNERS / CHAT_FOUNDERS
// (comma-separated names). A load failure yields an empty oracle.
func FromEnv(log *slog.Logger) *Oracle {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Warn("Role configuration load failed, all permission checks answer false", "error", err)
		return NewOracle(nil, nil, nil)
	}
	log.Info("Role configuration loaded",
		"admins", len(config.Admins), "owners", len(config.Owners), "founders", len(config.Founders))
	return NewOracle(config.Admins, config.Owners, config.Founders)
}

func (o *Oracle) IsAdmin(id domain.Identity) bool {
	_, ok := o.admins[domain.NormalizeName(id.Name)]
	return ok
}

func (o *Oracle) IsOwner(id domain.Identity) bool {
	_, ok := o.owners[domain.NormalizeName(id.Name)]
	return ok
}

func (o *Oracle) IsFounder(id domain.Identity) bool {
	_, ok := o.founders[domain.NormalizeName(id.Name)]
	return ok
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[domain.NormalizeName(name)] = struct{}{}
	}
	return set
}
