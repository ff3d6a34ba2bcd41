// Package conn models the two connection-phase state machines: the setup
// flow that establishes the first session, and the supervisor that watches
// an established session for loss and drives recovery. They are deliberately
// separate types with one handoff point (setup reaching Connected activates
// a fresh Supervisor) instead of a single conflated enumeration.
//
// Both machines are driven synchronously from the UI event loop; guard
// conditions, not locks, provide mutual exclusion.
package conn

import (
	"errors"
	"strings"
)

// SetupState is the pre-connection phase.
type SetupState int

const (
	SetupIdle SetupState = iota
	SetupConnecting
	SetupConnected
	SetupFailed
)

func (s SetupState) String() string {
	switch s {
	case SetupIdle:
		return "idle"
	case SetupConnecting:
		return "connecting"
	case SetupConnected:
		return "connected"
	case SetupFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrConnectUnavailable is returned when a connect intent arrives while a
// previous attempt is pending or already succeeded.
var ErrConnectUnavailable = errors.New("connect not available in current state")

// Setup drives the pre-connection flow: idle → connecting → connected or
// failed, with retry from failed. While connecting or connected, selection
// changes and further connect intents are locked out, which is what
// prevents racing a second attempt against a pending dial.
type Setup struct {
	state   SetupState
	lastErr error
}

// State returns the current setup phase.
func (s *Setup) State() SetupState { return s.state }

// LastError returns the error from the most recent failed attempt.
func (s *Setup) LastError() error { return s.lastErr }

// SelectionLocked reports whether server selection must stay fixed: true
// while an attempt is pending or a session is live.
func (s *Setup) SelectionLocked() bool {
	return s.state == SetupConnecting || s.state == SetupConnected
}

// CanConnect reports whether a connect intent is currently allowed for a
// valid target.
func (s *Setup) CanConnect(targetValid bool) bool {
	return targetValid && (s.state == SetupIdle || s.state == SetupFailed)
}

// Begin moves to connecting. Only idle and failed permit it.
func (s *Setup) Begin() error {
	if s.state != SetupIdle && s.state != SetupFailed {
		return ErrConnectUnavailable
	}
	s.state = SetupConnecting
	return nil
}

// Succeed records the remote acknowledgment. Connected is terminal for this
// phase: detecting later disconnection belongs to the Supervisor.
func (s *Setup) Succeed() {
	if s.state != SetupConnecting {
		return
	}
	s.state = SetupConnected
	s.lastErr = nil
}

// Fail records a rejected or errored attempt; a retry may Begin again.
func (s *Setup) Fail(err error) {
	if s.state != SetupConnecting {
		return
	}
	s.state = SetupFailed
	s.lastErr = err
}

// ValidManualTarget reports whether a hand-entered endpoint is complete
// enough to dial: both host and port fields non-empty.
func ValidManualTarget(host, port string) bool {
	return strings.TrimSpace(host) != "" && strings.TrimSpace(port) != ""
}
