package irc

import (
	"fmt"
	"time"
)

// ConfigError reports a configuration the session cannot act on. It is
// returned before any command depending on the bad setting is sent.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// AuthError reports that the network's authentication service rejected us.
type AuthError struct {
	// Reason is the text the service sent.
	Reason string
}

func (e *AuthError) Error() string { return "Authentication failed: " + e.Reason }

// TransportError wraps a failure of the underlying connection, including the
// connection ending before registration completed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// PhaseTimeoutError is returned when a registration phase does not complete
// within Session.PhaseTimeout.
type PhaseTimeoutError struct {
	Phase   Phase
	Timeout time.Duration
}

func (e *PhaseTimeoutError) Error() string {
	return fmt.Sprintf("%s phase did not complete within %s", e.Phase, e.Timeout)
}
