package irc

import "time"

// Hooks receives session events. A session invokes its Hooks synchronously
// from the goroutine running Session.Run, so implementations never see
// concurrent calls. A slow hook delays all protocol processing, keep-alive
// replies included.
type Hooks interface {
	// OnReady is called once, after every registration phase completed.
	OnReady()
	// OnPing is called for every keep-alive answered.
	OnPing()
	// OnStatus reports human readable progress.
	OnStatus(status string)
	// OnTrigger is called for chat lines starting with the trigger prefix,
	// with the prefix removed. A non-empty return value is sent back to
	// target.
	OnTrigger(ts time.Time, network, target string, sender Sender, text string) string
	// OnPrivmsg is called for every chat line, with its original text.
	OnPrivmsg(ts time.Time, network, target string, sender Sender, text string)
	// OnSendPrivmsg is called for every reply sent by the trigger pipeline.
	OnSendPrivmsg(ts time.Time, network, target, nick, text string)
}

// NopHooks implements Hooks with methods that do nothing. Embed it to
// implement only the events you care about.
type NopHooks struct{}

func (NopHooks) OnReady() {}

func (NopHooks) OnPing() {}

func (NopHooks) OnStatus(string) {}

func (NopHooks) OnTrigger(time.Time, string, string, Sender, string) string { return "" }

func (NopHooks) OnPrivmsg(time.Time, string, string, Sender, string) {}

func (NopHooks) OnSendPrivmsg(time.Time, string, string, string, string) {}

var _ Hooks = NopHooks{}
