package client

import "go.uber.org/zap"

// ProtocolGate reacts to server-reported protocol version mismatches. A
// mismatch only prompts the player to update; the connection stays open and
// later events keep flowing. Mismatch reports are not deduplicated.
type ProtocolGate struct {
	logger   *zap.Logger
	notifier Notifier
	loc      Localizer
}

// NewProtocolGate creates a ProtocolGate.
//
// Precondition: all arguments must be non-nil.
func NewProtocolGate(notifier Notifier, loc Localizer, logger *zap.Logger) *ProtocolGate {
	return &ProtocolGate{
		logger:   logger,
		notifier: notifier,
		loc:      loc,
	}
}

// HandleMismatch surfaces one update prompt. Never fatal.
func (g *ProtocolGate) HandleMismatch() {
	g.logger.Warn("server rejected protocol version, update required")
	g.notifier.Notify(
		g.loc.Resolve("update.title"),
		g.loc.Resolve("update.content"),
	)
}
