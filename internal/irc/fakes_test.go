package irc

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/raek/pladder-irc/internal/config"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// scriptedTransport replays parsed lines and records everything sent.
type scriptedTransport struct {
	records []*Record
	sent    []string
	sendErr error
}

func newScriptedTransport(t *testing.T, lines ...string) *scriptedTransport {
	t.Helper()
	st := &scriptedTransport{}
	for _, line := range lines {
		rec, err := ParseRecord(line)
		require.NoError(t, err, line)
		st.records = append(st.records, rec)
	}
	return st
}

func (st *scriptedTransport) Next(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(st.records) == 0 {
		return nil, io.EOF
	}
	rec := st.records[0]
	st.records = st.records[1:]
	return rec, nil
}

func (st *scriptedTransport) Send(command string, params ...string) error {
	if st.sendErr != nil {
		return st.sendErr
	}
	st.sent = append(st.sent, strings.Join(append([]string{command}, params...), " | "))
	return nil
}

// sentCommands returns the command names sent so far.
func (st *scriptedTransport) sentCommands() []string {
	var cmds []string
	for _, s := range st.sent {
		cmds = append(cmds, strings.SplitN(s, " | ", 2)[0])
	}
	return cmds
}

// blockingTransport never yields a record; Next returns when ctx is done.
type blockingTransport struct {
	sent []string
}

func (bt *blockingTransport) Next(ctx context.Context) (*Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (bt *blockingTransport) Send(command string, params ...string) error {
	bt.sent = append(bt.sent, command)
	return nil
}

// recordingHooks logs every event as a string.
type recordingHooks struct {
	events   []string
	statuses []string
	pings    int
	ready    int
	reply    func(text string) string
}

func (h *recordingHooks) OnReady() {
	h.ready++
	h.events = append(h.events, "ready")
}

func (h *recordingHooks) OnPing() {
	h.pings++
	h.events = append(h.events, "ping")
}

func (h *recordingHooks) OnStatus(status string) {
	h.statuses = append(h.statuses, status)
}

func (h *recordingHooks) OnTrigger(ts time.Time, network, target string, sender Sender, text string) string {
	h.events = append(h.events, fmt.Sprintf("trigger %s %s %s %s", network, target, sender, text))
	if h.reply == nil {
		return ""
	}
	return h.reply(text)
}

func (h *recordingHooks) OnPrivmsg(ts time.Time, network, target string, sender Sender, text string) {
	h.events = append(h.events, fmt.Sprintf("privmsg %s %s %s %s", network, target, sender, text))
}

func (h *recordingHooks) OnSendPrivmsg(ts time.Time, network, target, nick, text string) {
	h.events = append(h.events, fmt.Sprintf("send %s %s %s %s", network, target, nick, text))
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Network = "TestNet"
	cfg.Host = "irc.example.net"
	cfg.Nick = "pladder"
	cfg.Realname = "Pladder Bot"
	return &cfg
}

func newTestSession(cfg *config.Config, hooks Hooks) *Session {
	s := NewSession(cfg, hooks)
	s.now = func() time.Time { return fixedNow }
	return s
}
