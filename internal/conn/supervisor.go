package conn

// LinkState is the post-setup supervision track.
type LinkState int

const (
	LinkConnected LinkState = iota
	LinkDisconnected
	LinkReconnecting
)

func (s LinkState) String() string {
	switch s {
	case LinkConnected:
		return "connected"
	case LinkDisconnected:
		return "disconnected"
	case LinkReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Supervisor watches an established session. It activates connected, the
// handoff from Setup reaching SetupConnected, and thereafter reconciles
// connection-failure pushes against manual reconnect intents.
type Supervisor struct {
	state LinkState
}

// NewSupervisor returns a supervisor in the connected state.
func NewSupervisor() *Supervisor {
	return &Supervisor{state: LinkConnected}
}

// State returns the current link state.
func (s *Supervisor) State() LinkState { return s.state }

// ConnectionFailure records a lost session. Valid from any state and
// idempotent when already disconnected; it also cancels the reconnecting
// marker, since a failure push while reconnecting means that attempt's
// session is gone too.
func (s *Supervisor) ConnectionFailure() {
	s.state = LinkDisconnected
}

// BeginReconnect accepts a manual reconnect intent. It reports false, and
// changes nothing, unless the link is disconnected: a pending attempt must
// not be duplicated, and a healthy link has nothing to reconnect.
func (s *Supervisor) BeginReconnect() bool {
	if s.state != LinkDisconnected {
		return false
	}
	s.state = LinkReconnecting
	return true
}

// ReconnectSucceeded resolves the pending attempt into a live link.
func (s *Supervisor) ReconnectSucceeded() {
	if s.state != LinkReconnecting {
		return
	}
	s.state = LinkConnected
}

// ReconnectFailed returns the link to disconnected, ready for another
// manual attempt.
func (s *Supervisor) ReconnectFailed() {
	if s.state != LinkReconnecting {
		return
	}
	s.state = LinkDisconnected
}
