package daemon

import (
	"os"
	"path/filepath"
	"sync"
)

// Mode says whether this console runs next to the daemon or across the
// network. It decides transport (Unix socket vs TCP) and gates the
// daemon-shutdown action.
type Mode int

const (
	ModeRemote Mode = iota
	ModeLocal
)

func (m Mode) String() string {
	if m == ModeLocal {
		return "local"
	}
	return "remote"
}

var (
	modeMu    sync.Mutex
	modeKnown bool
	modeValue Mode

	// Swapped in tests.
	modeProbe = probeLocalSocket
)

// ClientMode reports the process-wide client mode. The probe runs once;
// the mutex guarantees a single in-flight initialization, and every later
// call shares the cached value until ResetClientMode.
func ClientMode() Mode {
	modeMu.Lock()
	defer modeMu.Unlock()
	if !modeKnown {
		modeValue = modeProbe()
		modeKnown = true
	}
	return modeValue
}

// ResetClientMode discards the memoized mode so the next ClientMode call
// re-probes.
func ResetClientMode() {
	modeMu.Lock()
	defer modeMu.Unlock()
	modeKnown = false
}

// SocketPath returns the daemon's Unix socket path: $STOKERD_SOCKET when
// set, otherwise the conventional run/state locations.
func SocketPath() string {
	if p := os.Getenv("STOKERD_SOCKET"); p != "" {
		return p
	}
	if _, err := os.Stat("/run/stokerd.sock"); err == nil {
		return "/run/stokerd.sock"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/run/stokerd.sock"
	}
	return filepath.Join(home, ".local", "share", "stokerd", "stokerd.sock")
}

// probeLocalSocket: a console is local iff the daemon socket exists here.
func probeLocalSocket() Mode {
	if _, err := os.Stat(SocketPath()); err == nil {
		return ModeLocal
	}
	return ModeRemote
}
