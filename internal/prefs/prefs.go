// Package prefs handles stoker console user preferences persistence.
// Preferences are stored in ~/.config/stoker/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for the console.
type Prefs struct {
	Theme string `toml:"theme"`

	// LastEndpoints are the socket addresses of the most recently
	// connected remote daemon, tried at startup before falling back to
	// discovery.
	LastEndpoints []string `toml:"last_endpoints"`

	// Session policy overrides; zero means the built-in default.
	DialTimeoutSeconds  int `toml:"dial_timeout_seconds"`
	CallTimeoutSeconds  int `toml:"call_timeout_seconds"`
	PingIntervalSeconds int `toml:"ping_interval_seconds"`

	ScrollbackLines int `toml:"scrollback_lines"`
}

const (
	defaultPrefsPath = "~/.config/stoker/prefs.toml"
	defaultTheme     = "Ember"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if
// missing or unreadable. Preferences are never load-bearing, so failures
// degrade to defaults instead of erroring.
func Load(path string) Prefs {
	prefs := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}

	file, err := os.Open(resolved)
	if err != nil {
		return prefs
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs
	}

	var loaded Prefs
	if err := toml.Unmarshal(bytes, &loaded); err != nil {
		return prefs
	}
	if strings.TrimSpace(loaded.Theme) == "" {
		loaded.Theme = defaultTheme
	}
	return loaded
}

// Save writes preferences to the given path, creating directories as
// needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// RememberEndpoints records the endpoints of a successful remote connect.
// Best effort: a failed write only loses the startup shortcut.
func RememberEndpoints(path string, p Prefs, endpoints []string) Prefs {
	p.LastEndpoints = append([]string(nil), endpoints...)
	_ = Save(path, p)
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
