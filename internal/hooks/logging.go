package hooks

import (
	"time"

	"github.com/raek/pladder-irc/internal/irc"
	"go.uber.org/zap"
)

// Logging logs session events and forwards them unchanged.
type Logging struct {
	irc.Hooks
	log *zap.Logger
}

func NewLogging(next irc.Hooks, log *zap.Logger) *Logging {
	return &Logging{Hooks: orNop(next), log: log}
}

func (l *Logging) OnReady() {
	l.log.Info("session ready")
	l.Hooks.OnReady()
}

func (l *Logging) OnPing() {
	l.log.Debug("answered ping")
	l.Hooks.OnPing()
}

func (l *Logging) OnStatus(status string) {
	l.log.Info(status)
	l.Hooks.OnStatus(status)
}

func (l *Logging) OnTrigger(ts time.Time, network, target string, sender irc.Sender, text string) string {
	l.log.Info(sender.Nick+" -> "+target+" : "+text, zap.String("network", network))
	return l.Hooks.OnTrigger(ts, network, target, sender, text)
}

func (l *Logging) OnSendPrivmsg(ts time.Time, network, target, nick, text string) {
	l.log.Info("-> "+target+" : "+text, zap.String("network", network))
	l.Hooks.OnSendPrivmsg(ts, network, target, nick, text)
}

// orNop substitutes irc.NopHooks for a nil next.
func orNop(next irc.Hooks) irc.Hooks {
	if next == nil {
		return irc.NopHooks{}
	}
	return next
}
