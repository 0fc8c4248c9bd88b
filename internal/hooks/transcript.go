package hooks

import (
	"time"

	"github.com/raek/pladder-irc/internal/irc"
	"github.com/raek/pladder-irc/internal/storage"
	"go.uber.org/zap"
)

// Transcript records every chat line, incoming and outgoing.
type Transcript struct {
	irc.Hooks
	store *storage.Transcript
	log   *zap.Logger
}

func NewTranscript(next irc.Hooks, store *storage.Transcript, log *zap.Logger) *Transcript {
	return &Transcript{Hooks: orNop(next), store: store, log: log}
}

func (t *Transcript) OnPrivmsg(ts time.Time, network, target string, sender irc.Sender, text string) {
	t.append(network, storage.Entry{Time: ts, Channel: target, Nick: sender.Nick, Text: text})
	t.Hooks.OnPrivmsg(ts, network, target, sender, text)
}

func (t *Transcript) OnSendPrivmsg(ts time.Time, network, target, nick, text string) {
	t.append(network, storage.Entry{Time: ts, Channel: target, Nick: nick, Text: text})
	t.Hooks.OnSendPrivmsg(ts, network, target, nick, text)
}

func (t *Transcript) append(network string, e storage.Entry) {
	if err := t.store.Append(network, e); err != nil {
		t.log.Warn("could not write transcript", zap.String("network", network), zap.Error(err))
	}
}
