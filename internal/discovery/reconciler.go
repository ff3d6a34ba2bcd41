package discovery

import (
	"fmt"
	"sort"

	"github.com/stokerd/console/internal/protocol"
)

// Reconciler maintains the known-daemon set from discovery snapshots and
// owns selection validity. Every snapshot replaces the whole set; there is
// no incremental merge, because the discovery stream is authoritative.
type Reconciler struct {
	servers   []protocol.Server
	index     map[string]protocol.Server
	selected  string
	onCleared func()
}

// NewReconciler builds an empty reconciler. onCleared, when non-nil, fires
// whenever a snapshot invalidates the current selection.
func NewReconciler(onCleared func()) *Reconciler {
	return &Reconciler{
		index:     make(map[string]protocol.Server),
		onCleared: onCleared,
	}
}

// ApplySnapshot replaces the known-server set wholesale. Entries absent from
// the new snapshot are dropped; if the selected identity is among them the
// selection is cleared and dependents are notified. An empty snapshot is
// valid and yields an empty set.
func (r *Reconciler) ApplySnapshot(snapshot map[string]protocol.ServerInfo) {
	r.index = make(map[string]protocol.Server, len(snapshot))
	r.servers = r.servers[:0]
	for fullName, info := range snapshot {
		server := protocol.Server{
			FullName:  fullName,
			Addresses: append([]string(nil), info.Addresses...),
			Port:      info.Port,
		}
		r.index[fullName] = server
		r.servers = append(r.servers, server)
	}
	// Stable listing order for rendering; address order within each entry
	// stays exactly as the snapshot reported it.
	sort.Slice(r.servers, func(i, j int) bool {
		return r.servers[i].FullName < r.servers[j].FullName
	})

	if r.selected != "" {
		if _, ok := r.index[r.selected]; !ok {
			r.selected = ""
			if r.onCleared != nil {
				r.onCleared()
			}
		}
	}
}

// Servers lists the current set, sorted by identity.
func (r *Reconciler) Servers() []protocol.Server {
	return r.servers
}

// Empty reports whether no daemons are known. Not an error: it drives the
// "no servers detected" affordance.
func (r *Reconciler) Empty() bool {
	return len(r.servers) == 0
}

// Select marks the server with the given identity as selected. The identity
// must reference a server present in the latest snapshot.
func (r *Reconciler) Select(fullName string) error {
	if _, ok := r.index[fullName]; !ok {
		return fmt.Errorf("unknown server %q", fullName)
	}
	r.selected = fullName
	return nil
}

// ClearSelection drops the selection without notifying dependents; the
// cleared callback is reserved for snapshot-driven invalidation.
func (r *Reconciler) ClearSelection() {
	r.selected = ""
}

// Selected returns the selected server, if any.
func (r *Reconciler) Selected() (protocol.Server, bool) {
	if r.selected == "" {
		return protocol.Server{}, false
	}
	server, ok := r.index[r.selected]
	return server, ok
}
