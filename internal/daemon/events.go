package daemon

import (
	"sync"

	"github.com/stokerd/console/internal/protocol"
)

// Event is a push notification delivered by the daemon. Events are applied
// in delivery order per subscriber; no ordering is guaranteed across
// different subscribers.
type Event interface{ event() }

// ConfigChanged reports a daemon-side configuration change. The pushed value
// overwrites any local view, including unsaved edits.
type ConfigChanged struct {
	Config protocol.ResolvedConfig
	Mask   protocol.ConfigMask
}

// ProcessStateUpdated is the authoritative process-state push.
type ProcessStateUpdated struct {
	State protocol.ProcessState
}

// OperationRequested marks a lifecycle operation as in flight.
type OperationRequested struct {
	Operation protocol.Operation
}

// OperationPerformed marks the in-flight operation as completed.
type OperationPerformed struct {
	Operation protocol.Operation
}

// OperationFailed marks the in-flight operation as failed with a
// user-facing message.
type OperationFailed struct {
	Operation protocol.Operation
	Message   string
}

// ConsoleOutput carries one chunk of the managed server's stdout or stderr.
type ConsoleOutput struct {
	Stderr bool
	Chunk  []byte
}

// FatalError reports an unrecoverable daemon-side failure.
type FatalError struct {
	Message string
}

// ShuttingDown announces that the daemon is about to exit.
type ShuttingDown struct{}

// ConnectionFailure reports that the session to the daemon was lost. It is
// emitted at most once per session.
type ConnectionFailure struct{}

func (ConfigChanged) event()       {}
func (ProcessStateUpdated) event() {}
func (OperationRequested) event()  {}
func (OperationPerformed) event()  {}
func (OperationFailed) event()     {}
func (ConsoleOutput) event()       {}
func (FatalError) event()          {}
func (ShuttingDown) event()        {}
func (ConnectionFailure) event()   {}

const subscriberBuffer = 64

// hub fans events out to subscribers. Each subscription is a scoped
// resource: the cancel func must be called on every teardown path so no
// events are handled after the consumer is gone.
type hub struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan Event
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan Event)}
}

func (h *hub) subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.next
	h.next++
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publish delivers e to every live subscriber. A subscriber that has fallen
// subscriberBuffer events behind loses this event rather than stalling the
// session read loop.
func (h *hub) publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
