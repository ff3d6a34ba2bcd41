// Package ops tracks the single in-flight lifecycle operation and the
// daemon's authoritative process state, and derives which actions are
// currently available.
package ops

import "github.com/stokerd/console/internal/protocol"

// Tracker reconciles operation pushes against process-state pushes. Both
// streams are applied in delivery order, each idempotent in isolation; no
// ordering is assumed between them.
type Tracker struct {
	inFlight   protocol.Operation
	state      protocol.ProcessState
	stateKnown bool
}

// OperationRequested occupies the in-flight slot. The protocol promises at
// most one outstanding operation; a second request simply replaces the
// first, which mirrors the daemon's behavior rather than guarding against
// it.
func (t *Tracker) OperationRequested(op protocol.Operation) {
	t.inFlight = op
}

// OperationPerformed clears the in-flight slot.
func (t *Tracker) OperationPerformed(protocol.Operation) {
	t.inFlight = ""
}

// OperationFailed clears the in-flight slot. The failure message is the
// caller's to surface; process state is untouched, since only a
// process.updated push may move it.
func (t *Tracker) OperationFailed(protocol.Operation, string) {
	t.inFlight = ""
}

// ProcessStateUpdated applies the authoritative process state. State never
// moves optimistically from an intent call, only from this push.
func (t *Tracker) ProcessStateUpdated(state protocol.ProcessState) {
	t.state = state
	t.stateKnown = true
}

// InFlight returns the pending operation, if any.
func (t *Tracker) InFlight() (protocol.Operation, bool) {
	return t.inFlight, t.inFlight != ""
}

// State returns the last pushed process state.
func (t *Tracker) State() protocol.ProcessState { return t.state }

// StateKnown reports whether any process-state push has arrived yet.
func (t *Tracker) StateKnown() bool { return t.stateKnown }

// Actions says which lifecycle intents are currently enabled.
type Actions struct {
	Start   bool
	Stop    bool
	Restart bool
}

// Available derives action availability as a pure function of the
// unconfigured flag, the in-flight slot, and the process-state kind:
//
//	Start:   needs config, no in-flight operation, server stopped.
//	Stop:    needs config, no in-flight operation, server started.
//	Restart: needs config, no in-flight operation, server started.
func Available(configMissing bool, inFlight protocol.Operation, kind protocol.ProcessStateKind) Actions {
	if configMissing || inFlight != "" {
		return Actions{}
	}
	started := kind == protocol.ProcessStarted
	return Actions{
		Start:   !started,
		Stop:    started,
		Restart: started,
	}
}

// Actions applies Available to the tracker's current view.
func (t *Tracker) Actions(configMissing bool) Actions {
	return Available(configMissing, t.inFlight, t.state.Kind)
}
