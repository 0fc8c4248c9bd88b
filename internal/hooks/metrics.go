package hooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/raek/pladder-irc/internal/irc"
)

// Metrics counts session events.
type Metrics struct {
	irc.Hooks

	pings    prometheus.Counter
	privmsgs prometheus.Counter
	triggers prometheus.Counter
	replies  prometheus.Counter
	ready    prometheus.Gauge
}

// NewMetrics registers the session collectors with reg.
func NewMetrics(next irc.Hooks, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Hooks: orNop(next),
		pings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pladder_irc_pings_total",
			Help: "Keep-alive probes answered.",
		}),
		privmsgs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pladder_irc_privmsgs_total",
			Help: "Chat lines received.",
		}),
		triggers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pladder_irc_triggers_total",
			Help: "Chat lines starting with the trigger prefix.",
		}),
		replies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pladder_irc_replies_total",
			Help: "Replies sent for triggered commands.",
		}),
		ready: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pladder_irc_ready",
			Help: "1 once registration completed.",
		}),
	}
	reg.MustRegister(m.pings, m.privmsgs, m.triggers, m.replies, m.ready)
	return m
}

func (m *Metrics) OnReady() {
	m.ready.Set(1)
	m.Hooks.OnReady()
}

func (m *Metrics) OnPing() {
	m.pings.Inc()
	m.Hooks.OnPing()
}

func (m *Metrics) OnPrivmsg(ts time.Time, network, target string, sender irc.Sender, text string) {
	m.privmsgs.Inc()
	m.Hooks.OnPrivmsg(ts, network, target, sender, text)
}

func (m *Metrics) OnTrigger(ts time.Time, network, target string, sender irc.Sender, text string) string {
	m.triggers.Inc()
	return m.Hooks.OnTrigger(ts, network, target, sender, text)
}

func (m *Metrics) OnSendPrivmsg(ts time.Time, network, target, nick, text string) {
	m.replies.Inc()
	m.Hooks.OnSendPrivmsg(ts, network, target, nick, text)
}
