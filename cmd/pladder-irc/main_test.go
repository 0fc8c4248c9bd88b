package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/raek/pladder-irc/internal/hooks"
	"github.com/raek/pladder-irc/internal/irc"
	"github.com/raek/pladder-irc/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "pladder-irc version dev\nBuilt: unknown\nCommit: unknown\n", out.String())
}

func TestConfigFlagRequired(t *testing.T) {
	cmd := newRootCmd()
	var errOut bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
	assert.Contains(t, errOut.String(), `required flag(s) "config" not set`)
}

func TestUnknownFlagReported(t *testing.T) {
	cmd := newRootCmd()
	var errOut bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--bogus"})

	assert.Error(t, cmd.Execute())
	assert.Contains(t, errOut.String(), "unknown flag: --bogus")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"host": "irc.example.net", "nick": "pladder", "auth": {"system": "X"}}`), 0644))

	cmd := newRootCmd()
	var errOut bytes.Buffer
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--config", path})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown authentication system")
	assert.Empty(t, errOut.String(), "errors from run are logged, not printed again")
}

func TestBuildHooksChain(t *testing.T) {
	opts := options{
		transcriptDir: filepath.Join(t.TempDir(), "transcripts"),
		metricsListen: "localhost:0",
	}
	h, reg, cleanup, err := buildHooks(opts, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, reg)

	_, ok := h.(*hooks.Logging)
	assert.True(t, ok, "outermost hook should log")

	reply := h.OnTrigger(time.Now(), "TestNet", "#a", irc.Sender{Nick: "alice"}, "ping")
	assert.Equal(t, "pong", reply)

	count, err := testutil.GatherAndCount(reg, "pladder_irc_triggers_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBuildHooksWithoutMetrics(t *testing.T) {
	h, reg, cleanup, err := buildHooks(options{}, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, reg)
	assert.NotNil(t, h)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, journal.PriDebug, priority(zapcore.DebugLevel))
	assert.Equal(t, journal.PriInfo, priority(zapcore.InfoLevel))
	assert.Equal(t, journal.PriWarning, priority(zapcore.WarnLevel))
	assert.Equal(t, journal.PriErr, priority(zapcore.ErrorLevel))
	assert.Equal(t, journal.PriCrit, priority(zapcore.PanicLevel))
	assert.Equal(t, journal.PriEmerg, priority(zapcore.FatalLevel))
}

func TestTranscriptCommand(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewTranscript(dir)
	require.NoError(t, err)
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, store.Append("TestNet", storage.Entry{Time: ts, Channel: "#a", Nick: "alice", Text: text}))
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"transcript", "--dir", dir, "-n", "2", "TestNet"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "2024-03-01T12:00:00Z #a <alice> two\n2024-03-01T12:00:00Z #a <alice> three\n", out.String())
}
