package irc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/raek/pladder-irc/internal/config"
	"go.uber.org/zap"
)

// RPL_WELCOME, the first reply after a successful registration.
const rplWelcome = "001"

const dialTimeout = 30 * time.Second

// QuakeNet's Q service.
const (
	qTarget        = "Q@CServe.quakenet.org"
	qSuccessFormat = "You are now logged in as %s."
)

var qSender = Sender{Nick: "Q", User: "TheQBot", Host: "CServe.quakenet.org"}

// Phase is one step of a session.
type Phase int

const (
	PhaseNick Phase = iota
	PhaseAuth
	PhaseUserMode
	PhaseJoin
	PhaseRelay
)

func (p Phase) String() string {
	switch p {
	case PhaseNick:
		return "nick"
	case PhaseAuth:
		return "authentication"
	case PhaseUserMode:
		return "user mode"
	case PhaseJoin:
		return "join"
	case PhaseRelay:
		return "relay"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// Session registers with a server and then relays chat lines to Hooks until
// the connection ends. A Session is used for a single connection.
type Session struct {
	cfg   *config.Config
	hooks Hooks

	// PhaseTimeout bounds each registration phase. Zero waits forever.
	PhaseTimeout time.Duration

	now func() time.Time
}

// NewSession returns a session for cfg. A nil hooks means NopHooks.
func NewSession(cfg *config.Config, hooks Hooks) *Session {
	if hooks == nil {
		hooks = NopHooks{}
	}
	return &Session{
		cfg:          cfg,
		hooks:        hooks,
		PhaseTimeout: cfg.PhaseTimeout,
		now:          time.Now,
	}
}

// Run registers over t and relays until t reports io.EOF, which is a normal
// return. Every other way out is an error: *ConfigError, *AuthError,
// *TransportError, *PhaseTimeoutError, or ctx's error. Run does not close t.
func (s *Session) Run(ctx context.Context, t Transport) error {
	if s.cfg.Auth != nil {
		if err := config.CheckAuthSystem(s.cfg.Auth.System); err != nil {
			return &ConfigError{Err: err}
		}
	}

	d := &dispatcher{src: t, cfg: s.cfg, hooks: s.hooks, now: s.now}

	if err := s.chooseNick(ctx, d); err != nil {
		return err
	}
	if s.cfg.Auth != nil {
		if err := s.authenticate(ctx, d); err != nil {
			return err
		}
	}
	if s.cfg.UserMode != "" {
		if err := s.setUserMode(ctx, d); err != nil {
			return err
		}
	}
	if len(s.cfg.Channels) > 0 {
		if err := s.joinChannels(ctx, d); err != nil {
			return err
		}
	}
	return s.relay(ctx, d)
}

func (s *Session) chooseNick(ctx context.Context, d *dispatcher) error {
	s.hooks.OnStatus(fmt.Sprintf(`Using nick "%s" and realname "%s"`, s.cfg.Nick, s.cfg.Realname))
	if err := d.send("NICK", s.cfg.Nick); err != nil {
		return err
	}
	if err := d.send("USER", s.cfg.Nick, "0", "*", s.cfg.Realname); err != nil {
		return err
	}
	return s.await(ctx, d, PhaseNick, func(rec *Record) (bool, error) {
		return rec.Command == rplWelcome, nil
	})
}

func (s *Session) authenticate(ctx context.Context, d *dispatcher) error {
	auth := s.cfg.Auth
	switch auth.System {
	case config.AuthSystemQ:
		s.hooks.OnStatus("Authenticating with Q as " + auth.Username)
		if err := d.send("PRIVMSG", qTarget, "AUTH "+auth.Username+" "+auth.Password); err != nil {
			return err
		}
		want := []string{s.cfg.Nick, fmt.Sprintf(qSuccessFormat, auth.Username)}
		return s.await(ctx, d, PhaseAuth, func(rec *Record) (bool, error) {
			if rec.Command != "NOTICE" || rec.Sender == nil || *rec.Sender != qSender {
				return false, nil
			}
			if slices.Equal(rec.Params, want) {
				return true, nil
			}
			return false, &AuthError{Reason: rec.Param(1)}
		})
	default:
		return &ConfigError{Err: config.CheckAuthSystem(auth.System)}
	}
}

func (s *Session) setUserMode(ctx context.Context, d *dispatcher) error {
	s.hooks.OnStatus("Setting user mode to " + s.cfg.UserMode)
	if err := d.send("MODE", s.cfg.Nick, s.cfg.UserMode); err != nil {
		return err
	}
	want := []string{s.cfg.Nick, s.cfg.UserMode}
	return s.await(ctx, d, PhaseUserMode, func(rec *Record) (bool, error) {
		return rec.Command == "MODE" && slices.Equal(rec.Params, want), nil
	})
}

func (s *Session) joinChannels(ctx context.Context, d *dispatcher) error {
	s.hooks.OnStatus("Joining channels: " + strings.Join(s.cfg.Channels, ", "))

	wanted := make(map[string]bool, len(s.cfg.Channels))
	for _, channel := range s.cfg.Channels {
		wanted[channel] = true
	}
	for _, channel := range s.cfg.Channels {
		if err := d.send("JOIN", channel); err != nil {
			return err
		}
	}

	joined := make(map[string]bool, len(wanted))
	return s.await(ctx, d, PhaseJoin, func(rec *Record) (bool, error) {
		if rec.Command != "JOIN" || rec.Sender == nil || rec.Sender.Nick != s.cfg.Nick {
			return false, nil
		}
		channel := rec.Param(0)
		if !wanted[channel] || joined[channel] {
			return false, nil
		}
		joined[channel] = true

		names := make([]string, 0, len(joined))
		for name := range joined {
			names = append(names, name)
		}
		slices.Sort(names)
		s.hooks.OnStatus(fmt.Sprintf("Joined %d of %d channels: %s",
			len(joined), len(wanted), strings.Join(names, ", ")))

		return len(joined) == len(wanted), nil
	})
}

func (s *Session) relay(ctx context.Context, d *dispatcher) error {
	s.hooks.OnStatus("Joined all channels: " + strings.Join(s.cfg.Channels, ", "))
	s.hooks.OnReady()
	for {
		if _, err := d.Next(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return classify(PhaseRelay, err)
		}
	}
}

// await reads records until match reports done or fails. Records that do not
// match are dropped.
func (s *Session) await(ctx context.Context, src RecordSource, phase Phase, match func(*Record) (bool, error)) error {
	phaseCtx := ctx
	if s.PhaseTimeout > 0 {
		var cancel context.CancelFunc
		phaseCtx, cancel = context.WithTimeout(ctx, s.PhaseTimeout)
		defer cancel()
	}

	for {
		rec, err := src.Next(phaseCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return &PhaseTimeoutError{Phase: phase, Timeout: s.PhaseTimeout}
			}
			return classify(phase, err)
		}
		done, err := match(rec)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// classify wraps read failures in a TransportError. Cancellation and errors
// the dispatcher already wrapped pass through.
func classify(phase Phase, err error) error {
	var te *TransportError
	switch {
	case errors.As(err, &te):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, io.EOF):
		return &TransportError{Op: "read", Err: fmt.Errorf("connection closed during %s phase: %w", phase, err)}
	}
	return &TransportError{Op: "read", Err: err}
}

// Run connects to the server named by cfg, runs a session over the
// connection and closes it on return.
func Run(ctx context.Context, cfg *config.Config, hooks Hooks, log *zap.Logger) error {
	if hooks == nil {
		hooks = NopHooks{}
	}
	hooks.OnStatus(fmt.Sprintf("Connecting to %s:%d", cfg.Host, cfg.Port))

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := Dial(ctx, addr, DialOptions{
		TLS:                cfg.TLS,
		InsecureSkipVerify: cfg.TLSInsecure,
		Timeout:            dialTimeout,
		Logger:             log,
	})
	if err != nil {
		return &TransportError{Op: "dial", Err: err}
	}
	defer conn.Close()

	return NewSession(cfg, hooks).Run(ctx, conn)
}
