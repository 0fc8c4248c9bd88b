package irc

import (
	"context"
	"strings"
	"time"

	"github.com/raek/pladder-irc/internal/config"
)

// channelSigils are the first characters that mark a target as a channel.
const channelSigils = "&#+!"

// IsChannel reports whether target names a channel.
func IsChannel(target string) bool {
	return target != "" && strings.IndexByte(channelSigils, target[0]) >= 0
}

// ReplyTarget returns where a reply to a chat line sent to target by sender
// should go: the channel itself, or the sender for private messages. It
// returns "" when there is nowhere to reply.
func ReplyTarget(target string, sender *Sender) string {
	if IsChannel(target) {
		return target
	}
	if sender == nil {
		return ""
	}
	return sender.Nick
}

// dispatcher answers keep-alives and relays chat lines for every record it
// reads, and yields the remaining records unchanged. Every registration phase
// and the relay loop read through the same dispatcher.
type dispatcher struct {
	src   Transport
	cfg   *config.Config
	hooks Hooks
	now   func() time.Time
}

var _ RecordSource = (*dispatcher)(nil)

func (d *dispatcher) Next(ctx context.Context) (*Record, error) {
	for {
		rec, err := d.src.Next(ctx)
		if err != nil {
			return nil, err
		}

		switch rec.Command {
		case "PING":
			if err := d.send("PONG", rec.Params...); err != nil {
				return nil, err
			}
			d.hooks.OnPing()
		case "PRIVMSG":
			if err := d.privmsg(rec); err != nil {
				return nil, err
			}
		default:
			return rec, nil
		}
	}
}

func (d *dispatcher) privmsg(rec *Record) error {
	if len(rec.Params) < 2 {
		return nil
	}
	target, text := rec.Params[0], rec.Params[1]
	replyTo := ReplyTarget(target, rec.Sender)
	if replyTo == "" {
		return nil
	}
	var sender Sender
	if rec.Sender != nil {
		sender = *rec.Sender
	}

	d.hooks.OnPrivmsg(d.now().UTC(), d.cfg.Network, replyTo, sender, text)

	if !strings.HasPrefix(text, d.cfg.TriggerPrefix) {
		return nil
	}
	return d.trigger(replyTo, sender, strings.TrimPrefix(text, d.cfg.TriggerPrefix))
}

func (d *dispatcher) trigger(replyTo string, sender Sender, text string) error {
	ts := d.now().UTC()
	reply := d.hooks.OnTrigger(ts, d.cfg.Network, replyTo, sender, text)
	if reply == "" {
		return nil
	}
	for _, line := range replyLines(reply) {
		full := d.cfg.ReplyPrefix + line
		d.hooks.OnSendPrivmsg(ts, d.cfg.Network, replyTo, d.cfg.Nick, full)
		if err := d.send("PRIVMSG", replyTo, full); err != nil {
			return err
		}
	}
	return nil
}

// replyLines splits a reply into lines that can each be sent as one PRIVMSG.
// Empty lines and NUL bytes are dropped.
func replyLines(reply string) []string {
	reply = strings.ReplaceAll(reply, "\x00", "")
	return strings.FieldsFunc(reply, func(r rune) bool {
		return r == '\r' || r == '\n'
	})
}

func (d *dispatcher) send(command string, params ...string) error {
	if err := d.src.Send(command, params...); err != nil {
		return &TransportError{Op: "send " + command, Err: err}
	}
	return nil
}
