package hooks

import (
	"fmt"
	"strings"
	"time"

	"github.com/raek/pladder-irc/internal/irc"
)

// Version information, set by main from build flags.
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Builtin answers a handful of commands locally. It is the innermost hook
// when no command bus is configured.
type Builtin struct {
	irc.NopHooks
}

func NewBuiltin() *Builtin {
	return &Builtin{}
}

// OnTrigger handles a command line without its trigger prefix
func (b *Builtin) OnTrigger(ts time.Time, network, target string, sender irc.Sender, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "help":
		return "Available commands: help, version, ping, echo <text>"
	case "version":
		return fmt.Sprintf("pladder-irc version %s (built %s, commit %s)", Version, BuildDate, GitCommit)
	case "ping":
		return "pong"
	case "echo":
		return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), fields[0]))
	}
	return ""
}
