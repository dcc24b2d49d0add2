// Package actions implements the delegated admin side effects. In this
// deployment the game server owns the actual teleport/kick mechanics;
// this implementation records the request and returns immediately, which
// is all the fire-and-forget contract requires.
package actions

import "log/slog"

type Logged struct {
	log *slog.Logger
}

func NewLogged(log *slog.Logger) Logged {
	return Logged{log: log}
}

func (a Logged) TeleportPlayerToAdmin(targetName string) {
	a.log.Info("Bring requested", "player", targetName)
}

func (a Logged) KickPlayer(targetName, reason string) {
	a.log.Info("Kick requested", "player", targetName, "reason", reason)
}
