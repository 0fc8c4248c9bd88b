package main

import (
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const syslogIdentifier = "pladder-irc"

func newLogger(verbose, systemd bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if systemd && journal.Enabled() {
		enc := zap.NewProductionEncoderConfig()
		enc.TimeKey = ""
		enc.LevelKey = ""
		return zap.New(&journalCore{
			LevelEnabler: cfg.Level,
			enc:          zapcore.NewConsoleEncoder(enc),
		}), nil
	}
	return cfg.Build()
}

// journalCore writes log entries to the systemd journal, mapping zap levels
// to syslog priorities.
type journalCore struct {
	zapcore.LevelEnabler
	enc zapcore.Encoder
}

func (c *journalCore) With(fields []zapcore.Field) zapcore.Core {
	enc := c.enc.Clone()
	for _, f := range fields {
		f.AddTo(enc)
	}
	return &journalCore{LevelEnabler: c.LevelEnabler, enc: enc}
}

func (c *journalCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *journalCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(e, fields)
	if err != nil {
		return err
	}
	defer buf.Free()
	return journal.Send(strings.TrimSuffix(buf.String(), "\n"), priority(e.Level), map[string]string{
		"SYSLOG_IDENTIFIER": syslogIdentifier,
	})
}

func (c *journalCore) Sync() error { return nil }

func priority(level zapcore.Level) journal.Priority {
	switch level {
	case zapcore.DebugLevel:
		return journal.PriDebug
	case zapcore.InfoLevel:
		return journal.PriInfo
	case zapcore.WarnLevel:
		return journal.PriWarning
	case zapcore.ErrorLevel:
		return journal.PriErr
	case zapcore.DPanicLevel, zapcore.PanicLevel:
		return journal.PriCrit
	}
	return journal.PriEmerg
}
