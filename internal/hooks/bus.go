package hooks

import (
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/raek/pladder-irc/internal/irc"
	"go.uber.org/zap"
)

// D-Bus names of the command and log services on the session bus.
const (
	BotService       = "se.raek.PladderBot"
	BotPath          = dbus.ObjectPath("/se/raek/PladderBot")
	runCommandMethod = BotService + ".RunCommand"

	LogService    = "se.raek.PladderLog"
	LogPath       = dbus.ObjectPath("/se/raek/PladderLog")
	addLineMethod = LogService + ".AddLine"
)

// ErrorReply is sent in place of a command result when the bot service
// call fails.
const ErrorReply = "Oops! Error logged."

// caller is the part of dbus.BusObject the bus hooks use.
type caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Bus runs triggered commands on the bot service and forwards every chat
// line to the log service. It answers OnTrigger itself; the wrapped hooks
// never see triggers.
type Bus struct {
	irc.Hooks
	conn  *dbus.Conn
	bot   caller
	lines caller
	log   *zap.Logger
}

// DialBus connects to the session bus.
func DialBus(next irc.Hooks, log *zap.Logger) (*Bus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	b := newBus(next, conn.Object(BotService, BotPath), conn.Object(LogService, LogPath), log)
	b.conn = conn
	return b, nil
}

func newBus(next irc.Hooks, bot, lines caller, log *zap.Logger) *Bus {
	return &Bus{Hooks: orNop(next), bot: bot, lines: lines, log: log}
}

// Close closes the bus connection.
func (b *Bus) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}

func (b *Bus) OnTrigger(ts time.Time, network, target string, sender irc.Sender, text string) string {
	var reply string
	err := b.bot.Call(runCommandMethod, 0, unixSeconds(ts), network, target, sender.Nick, text).Store(&reply)
	if err != nil {
		b.log.Error("RunCommand failed", zap.String("network", network), zap.String("channel", target), zap.Error(err))
		return ErrorReply
	}
	return reply
}

func (b *Bus) OnPrivmsg(ts time.Time, network, target string, sender irc.Sender, text string) {
	b.addLine(ts, network, target, sender.Nick, text)
	b.Hooks.OnPrivmsg(ts, network, target, sender, text)
}

func (b *Bus) OnSendPrivmsg(ts time.Time, network, target, nick, text string) {
	b.addLine(ts, network, target, nick, text)
	b.Hooks.OnSendPrivmsg(ts, network, target, nick, text)
}

func (b *Bus) addLine(ts time.Time, network, channel, nick, text string) {
	call := b.lines.Call(addLineMethod, 0, unixSeconds(ts), network, channel, nick, text)
	if call.Err != nil {
		b.log.Warn("AddLine failed", zap.String("network", network), zap.String("channel", channel), zap.Error(call.Err))
	}
}

func unixSeconds(ts time.Time) float64 {
	return float64(ts.Unix()) + float64(ts.Nanosecond())/float64(time.Second)
}
