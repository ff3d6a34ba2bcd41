// Package confedit tracks local edits to the daemon's launch configuration
// against the last daemon-acknowledged baseline.
//
// The daemon owns the configuration; the tracker only ever holds two values
// of it: the edit buffer the user is typing into, and the baseline the
// daemon last acknowledged. Dirtiness is a pure function of the two,
// recomputed on every buffer mutation. The baseline advances only on a
// save acknowledgment, and only to the value the daemon acknowledged; a
// config.changed push overwrites both, discarding unsaved edits: the
// remote is authoritative and the last writer wins.
package confedit

import (
	"context"
	"fmt"

	"github.com/stokerd/console/internal/protocol"
)

// Remote is the slice of the daemon facade the tracker needs.
type Remote interface {
	GetConfig(ctx context.Context) (*protocol.ResolvedConfig, *protocol.ConfigMask, error)
	UpdateConfig(ctx context.Context, cfg protocol.ResolvedConfig, mask protocol.ConfigMask) error
}

// FieldUpdate is a partial buffer mutation; nil fields are untouched.
// Setting Arguments also moves the arguments mask to the union's
// discriminant.
type FieldUpdate struct {
	JavaPath      *string
	JavaPathKind  *protocol.JavaPathKind
	ServerJarPath *string
	Arguments     *protocol.Arguments
	User          *string
	UserKind      *protocol.UserKind
}

// Tracker is the config edit session.
type Tracker struct {
	buffer   protocol.ResolvedConfig
	bufMask  protocol.ConfigMask
	baseline protocol.ResolvedConfig
	baseMask protocol.ConfigMask

	loaded  bool
	missing bool
	dirty   bool
}

// Load fetches the daemon's configuration. An unconfigured daemon sets the
// missing flag, a valid state that gates lifecycle actions rather than an
// error, and leaves buffer and baseline unset.
func (t *Tracker) Load(ctx context.Context, remote Remote) error {
	cfg, mask, err := remote.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg == nil {
		t.buffer = protocol.ResolvedConfig{}
		t.baseline = protocol.ResolvedConfig{}
		t.bufMask = protocol.ConfigMask{}
		t.baseMask = protocol.ConfigMask{}
		t.loaded = false
		t.missing = true
		t.dirty = false
		return nil
	}
	t.setBoth(*cfg, *mask)
	return nil
}

// Edit applies a partial update to the buffer and recomputes dirtiness.
// Editing is also how an unconfigured daemon gets its first config: the
// buffer starts from zero values and a later Save creates it.
func (t *Tracker) Edit(update FieldUpdate) {
	if update.JavaPath != nil {
		t.buffer.JavaPath = *update.JavaPath
	}
	if update.JavaPathKind != nil {
		t.bufMask.JavaPath = *update.JavaPathKind
	}
	if update.ServerJarPath != nil {
		t.buffer.ServerJarPath = *update.ServerJarPath
	}
	if update.Arguments != nil {
		t.buffer.Arguments = update.Arguments.Clone()
		t.bufMask.Arguments = update.Arguments.Kind
	}
	if update.User != nil {
		t.buffer.User = *update.User
	}
	if update.UserKind != nil {
		t.bufMask.User = *update.UserKind
	}
	t.recompute()
}

// Save sends the buffer to the daemon, materialized per its current
// discriminants. On acknowledgment the baseline advances to the buffer and
// the session is clean. On failure nothing moves: edits are never lost to
// a failed save, and the caller surfaces the error.
func (t *Tracker) Save(ctx context.Context, remote Remote) error {
	if err := t.buffer.Arguments.Validate(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := remote.UpdateConfig(ctx, t.buffer.Clone(), t.bufMask); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	t.baseline = t.buffer.Clone()
	t.baseMask = t.bufMask
	t.loaded = true
	t.missing = false
	t.dirty = false
	return nil
}

// Acknowledge advances the baseline to the exact value the daemon
// confirmed as persisted. Callers that run the save off the update loop
// use this instead of Save: edits made while the save was in flight stay
// in the buffer and keep the session dirty against the new baseline.
func (t *Tracker) Acknowledge(cfg protocol.ResolvedConfig, mask protocol.ConfigMask) {
	t.baseline = cfg.Clone()
	t.baseMask = mask
	t.loaded = true
	t.missing = false
	t.recompute()
}

// Reset discards edits: buffer returns to the baseline. No remote call.
func (t *Tracker) Reset() {
	t.buffer = t.baseline.Clone()
	t.bufMask = t.baseMask
	t.dirty = false
}

// RemoteChanged applies a config.changed push: both buffer and baseline are
// overwritten unconditionally, unsaved edits included.
func (t *Tracker) RemoteChanged(cfg protocol.ResolvedConfig, mask protocol.ConfigMask) {
	t.setBoth(cfg, mask)
}

func (t *Tracker) setBoth(cfg protocol.ResolvedConfig, mask protocol.ConfigMask) {
	t.buffer = cfg.Clone()
	t.baseline = cfg.Clone()
	t.bufMask = mask
	t.baseMask = mask
	t.loaded = true
	t.missing = false
	t.dirty = false
}

func (t *Tracker) recompute() {
	t.dirty = !t.buffer.Equal(t.baseline) || t.bufMask != t.baseMask
}

// Buffer returns a copy of the edit buffer and its mask.
func (t *Tracker) Buffer() (protocol.ResolvedConfig, protocol.ConfigMask) {
	return t.buffer.Clone(), t.bufMask
}

// Baseline returns a copy of the last-acknowledged value and its mask.
func (t *Tracker) Baseline() (protocol.ResolvedConfig, protocol.ConfigMask) {
	return t.baseline.Clone(), t.baseMask
}

// Dirty reports whether any tracked field differs between buffer and
// baseline.
func (t *Tracker) Dirty() bool { return t.dirty }

// Missing reports the unconfigured-daemon condition.
func (t *Tracker) Missing() bool { return t.missing }

// Loaded reports whether a daemon-acknowledged config is held.
func (t *Tracker) Loaded() bool { return t.loaded }
