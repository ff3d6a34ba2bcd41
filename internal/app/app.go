package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/stokerd/console/internal/daemon"
	"github.com/stokerd/console/internal/discovery"
	"github.com/stokerd/console/internal/prefs"
	"github.com/stokerd/console/internal/protocol"
	"github.com/stokerd/console/internal/ui"
)

// Options configure the console application.
type Options struct {
	PrefsPath string // empty uses default ~/.config/stoker/prefs.toml
	Debug     bool   // verbose logging
}

// Run boots the console TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	userPrefs := prefs.Load(opts.PrefsPath)

	logger, closeLog, err := newLogger(opts.Debug)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	// The TUI owns the terminal; route package-level slog output to the
	// same file.
	slog.SetDefault(logger)

	mode := daemon.ClientMode()
	logger.Info("starting", "mode", mode.String())

	dialer := dialerFromPrefs(userPrefs)

	// Discovery only matters for remote clients; a local client talks to
	// the daemon over its unix socket.
	var snapshots <-chan map[string]protocol.ServerInfo
	if mode == daemon.ModeRemote {
		snapshots, err = discovery.Browse(ctx)
		if err != nil {
			// Manual targets still work without mDNS.
			logger.Warn("discovery unavailable", "error", err)
			snapshots = nil
		}
	}

	uiOpts := ui.Options{
		Context:    ctx,
		Mode:       mode,
		Dialer:     dialer,
		Prefs:      userPrefs,
		PrefsPath:  opts.PrefsPath,
		SocketPath: daemon.SocketPath(),
		Snapshots:  snapshots,
		Logger:     logger,
	}
	return ui.Run(uiOpts)
}

func dialerFromPrefs(p prefs.Prefs) daemon.Dialer {
	var d daemon.Dialer
	if p.DialTimeoutSeconds > 0 {
		d.DialTimeout = time.Duration(p.DialTimeoutSeconds) * time.Second
	}
	if p.CallTimeoutSeconds > 0 {
		d.CallTimeout = time.Duration(p.CallTimeoutSeconds) * time.Second
	}
	if p.PingIntervalSeconds > 0 {
		d.PingInterval = time.Duration(p.PingIntervalSeconds) * time.Second
	}
	return d
}

// newLogger opens a file-backed logger. The TUI owns the terminal, so log
// output never goes to stdout or stderr.
func newLogger(debug bool) (*slog.Logger, func(), error) {
	path, err := logPath()
	if err != nil {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = file.Close() }, nil
}

func logPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "stoker", "console.log"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "stoker", "console.log"), nil
}
