package hooks

import (
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/raek/pladder-irc/internal/irc"
	"go.uber.org/zap"
)

// Systemd reports readiness, liveness and status to the service manager.
// Each answered ping doubles as a watchdog keep-alive.
type Systemd struct {
	irc.Hooks
	log    *zap.Logger
	notify func(state string) error
}

func NewSystemd(next irc.Hooks, log *zap.Logger) *Systemd {
	return &Systemd{
		Hooks: orNop(next),
		log:   log,
		notify: func(state string) error {
			_, err := daemon.SdNotify(false, state)
			return err
		},
	}
}

func (s *Systemd) OnReady() {
	s.send(daemon.SdNotifyReady)
	s.Hooks.OnReady()
}

func (s *Systemd) OnPing() {
	s.send(daemon.SdNotifyWatchdog)
	s.Hooks.OnPing()
}

func (s *Systemd) OnStatus(status string) {
	s.send("STATUS=" + status)
	s.Hooks.OnStatus(status)
}

func (s *Systemd) send(state string) {
	if err := s.notify(state); err != nil {
		s.log.Warn("sd_notify failed", zap.String("state", state), zap.Error(err))
	}
}
