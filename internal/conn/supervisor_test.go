package conn

import "testing"

func TestSupervisorStartsConnected(t *testing.T) {
	s := NewSupervisor()
	if s.State() != LinkConnected {
		t.Fatalf("state = %v, want connected after handoff", s.State())
	}
}

func TestSupervisorFailureIsIdempotent(t *testing.T) {
	s := NewSupervisor()
	s.ConnectionFailure()
	if s.State() != LinkDisconnected {
		t.Fatalf("state = %v, want disconnected", s.State())
	}
	s.ConnectionFailure()
	if s.State() != LinkDisconnected {
		t.Fatalf("state after repeat failure = %v, want disconnected", s.State())
	}
}

func TestSupervisorReconnectCycle(t *testing.T) {
	s := NewSupervisor()
	s.ConnectionFailure()

	if !s.BeginReconnect() {
		t.Fatal("reconnect should be accepted from disconnected")
	}
	if s.State() != LinkReconnecting {
		t.Fatalf("state = %v, want reconnecting", s.State())
	}

	// Duplicate intents are no-ops while an attempt is pending.
	if s.BeginReconnect() {
		t.Fatal("duplicate reconnect intent should be refused")
	}

	s.ReconnectSucceeded()
	if s.State() != LinkConnected {
		t.Fatalf("state = %v, want connected", s.State())
	}

	// A healthy link has nothing to reconnect.
	if s.BeginReconnect() {
		t.Fatal("reconnect from connected should be refused")
	}
}

func TestSupervisorReconnectFailure(t *testing.T) {
	s := NewSupervisor()
	s.ConnectionFailure()
	_ = s.BeginReconnect()

	s.ReconnectFailed()
	if s.State() != LinkDisconnected {
		t.Fatalf("state = %v, want disconnected", s.State())
	}
	if !s.BeginReconnect() {
		t.Fatal("another manual attempt should be permitted after failure")
	}
}

func TestSupervisorFailureDuringReconnect(t *testing.T) {
	s := NewSupervisor()
	s.ConnectionFailure()
	_ = s.BeginReconnect()

	// A failure push while reconnecting cancels the pending marker.
	s.ConnectionFailure()
	if s.State() != LinkDisconnected {
		t.Fatalf("state = %v, want disconnected", s.State())
	}

	// A stray success from the abandoned attempt must not resurrect the link.
	s.ReconnectSucceeded()
	if s.State() != LinkDisconnected {
		t.Fatalf("stray success moved state to %v", s.State())
	}
}
