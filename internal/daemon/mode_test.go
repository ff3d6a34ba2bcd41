package daemon

import "testing"

func TestClientModeMemoized(t *testing.T) {
	orig := modeProbe
	t.Cleanup(func() {
		modeProbe = orig
		ResetClientMode()
	})

	probes := 0
	modeProbe = func() Mode {
		probes++
		return ModeLocal
	}
	ResetClientMode()

	if got := ClientMode(); got != ModeLocal {
		t.Fatalf("ClientMode = %v, want local", got)
	}
	if got := ClientMode(); got != ModeLocal {
		t.Fatalf("ClientMode (cached) = %v, want local", got)
	}
	if probes != 1 {
		t.Fatalf("probe ran %d times, want 1", probes)
	}

	// Only an explicit reset re-probes.
	modeProbe = func() Mode {
		probes++
		return ModeRemote
	}
	ResetClientMode()
	if got := ClientMode(); got != ModeRemote {
		t.Fatalf("ClientMode after reset = %v, want remote", got)
	}
	if probes != 2 {
		t.Fatalf("probe ran %d times after reset, want 2", probes)
	}
}

func TestModeString(t *testing.T) {
	if ModeLocal.String() != "local" || ModeRemote.String() != "remote" {
		t.Fatalf("Mode strings = %q / %q", ModeLocal, ModeRemote)
	}
}
