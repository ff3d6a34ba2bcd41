package conn

import (
	"errors"
	"testing"
)

func TestSetupHappyPath(t *testing.T) {
	var s Setup
	if s.State() != SetupIdle {
		t.Fatalf("initial state = %v, want idle", s.State())
	}
	if !s.CanConnect(true) {
		t.Fatal("connect should be enabled from idle with a valid target")
	}
	if s.CanConnect(false) {
		t.Fatal("connect requires a valid target")
	}

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if s.State() != SetupConnecting || !s.SelectionLocked() {
		t.Fatalf("state = %v locked = %v, want connecting/locked", s.State(), s.SelectionLocked())
	}
	if s.CanConnect(true) {
		t.Fatal("connect must be disabled while connecting")
	}

	s.Succeed()
	if s.State() != SetupConnected || !s.SelectionLocked() {
		t.Fatalf("state = %v, want connected with selection locked", s.State())
	}
	if s.CanConnect(true) {
		t.Fatal("connect must stay disabled once connected")
	}
}

func TestSetupFailureAndRetry(t *testing.T) {
	var s Setup
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	boom := errors.New("connection refused")
	s.Fail(boom)
	if s.State() != SetupFailed {
		t.Fatalf("state = %v, want failed", s.State())
	}
	if !errors.Is(s.LastError(), boom) {
		t.Fatalf("LastError = %v, want %v", s.LastError(), boom)
	}
	if s.SelectionLocked() {
		t.Fatal("failed state should release the selection lock")
	}

	// Retry uses the same guard as the initial connect.
	if !s.CanConnect(true) {
		t.Fatal("retry should be permitted from failed")
	}
	if err := s.Begin(); err != nil {
		t.Fatalf("retry Begin: %v", err)
	}
	s.Succeed()
	if s.LastError() != nil {
		t.Fatalf("LastError after success = %v, want nil", s.LastError())
	}
}

func TestSetupBeginGuard(t *testing.T) {
	var s Setup
	_ = s.Begin()
	if err := s.Begin(); !errors.Is(err, ErrConnectUnavailable) {
		t.Fatalf("second Begin = %v, want ErrConnectUnavailable", err)
	}
	s.Succeed()
	if err := s.Begin(); !errors.Is(err, ErrConnectUnavailable) {
		t.Fatalf("Begin after connected = %v, want ErrConnectUnavailable", err)
	}
}

func TestSetupIgnoresStrayResults(t *testing.T) {
	var s Setup
	// Results landing outside connecting must not move the machine.
	s.Succeed()
	if s.State() != SetupIdle {
		t.Fatalf("stray Succeed moved state to %v", s.State())
	}
	s.Fail(errors.New("late"))
	if s.State() != SetupIdle || s.LastError() != nil {
		t.Fatalf("stray Fail moved state to %v (%v)", s.State(), s.LastError())
	}
}

func TestValidManualTarget(t *testing.T) {
	cases := []struct {
		host, port string
		want       bool
	}{
		{"10.0.0.5", "25600", true},
		{" ", "25600", false},
		{"10.0.0.5", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		if got := ValidManualTarget(tc.host, tc.port); got != tc.want {
			t.Errorf("ValidManualTarget(%q, %q) = %v, want %v", tc.host, tc.port, got, tc.want)
		}
	}
}
