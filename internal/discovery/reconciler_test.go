package discovery

import (
	"testing"

	"github.com/stokerd/console/internal/protocol"
)

func snap(entries map[string]protocol.ServerInfo) map[string]protocol.ServerInfo {
	return entries
}

func TestApplySnapshotReplacesWholesale(t *testing.T) {
	r := NewReconciler(nil)

	r.ApplySnapshot(snap(map[string]protocol.ServerInfo{
		"a._stokerd._tcp.local.": {Addresses: []string{"10.0.0.1"}, Port: 1},
		"b._stokerd._tcp.local.": {Addresses: []string{"10.0.0.2"}, Port: 2},
	}))
	if got := len(r.Servers()); got != 2 {
		t.Fatalf("servers = %d, want 2", got)
	}

	// A later snapshot supersedes everything: stale entries drop, new appear.
	r.ApplySnapshot(snap(map[string]protocol.ServerInfo{
		"c._stokerd._tcp.local.": {Addresses: []string{"10.0.0.3"}, Port: 3},
	}))
	servers := r.Servers()
	if len(servers) != 1 || servers[0].FullName != "c._stokerd._tcp.local." {
		t.Fatalf("servers after replacement = %#v", servers)
	}

	r.ApplySnapshot(snap(map[string]protocol.ServerInfo{}))
	if !r.Empty() {
		t.Fatal("empty snapshot should yield an empty, valid set")
	}
}

func TestSelectionInvalidation(t *testing.T) {
	cleared := 0
	r := NewReconciler(func() { cleared++ })

	r.ApplySnapshot(map[string]protocol.ServerInfo{
		"den._stokerd._tcp.local.":  {Addresses: []string{"10.0.0.5"}, Port: 25600},
		"barn._stokerd._tcp.local.": {Addresses: []string{"10.0.0.6"}, Port: 25600},
	})

	if err := r.Select("den._stokerd._tcp.local."); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, ok := r.Selected(); !ok {
		t.Fatal("selection should be set")
	}

	// Selection survives snapshots that still contain it.
	r.ApplySnapshot(map[string]protocol.ServerInfo{
		"den._stokerd._tcp.local.": {Addresses: []string{"10.0.0.5"}, Port: 25600},
	})
	if _, ok := r.Selected(); !ok {
		t.Fatal("selection should survive while present")
	}
	if cleared != 0 {
		t.Fatalf("cleared fired %d times, want 0", cleared)
	}

	// Selected identity absent from the new snapshot clears selection.
	r.ApplySnapshot(map[string]protocol.ServerInfo{
		"barn._stokerd._tcp.local.": {Addresses: []string{"10.0.0.6"}, Port: 25600},
	})
	if _, ok := r.Selected(); ok {
		t.Fatal("selection should be cleared when absent from snapshot")
	}
	if cleared != 1 {
		t.Fatalf("cleared fired %d times, want 1", cleared)
	}
}

func TestSelectUnknownServer(t *testing.T) {
	r := NewReconciler(nil)
	if err := r.Select("ghost._stokerd._tcp.local."); err == nil {
		t.Fatal("selecting an undiscovered server should fail")
	}
}

func TestManualClearDoesNotNotify(t *testing.T) {
	cleared := 0
	r := NewReconciler(func() { cleared++ })
	r.ApplySnapshot(map[string]protocol.ServerInfo{
		"den._stokerd._tcp.local.": {Addresses: []string{"10.0.0.5"}, Port: 25600},
	})
	_ = r.Select("den._stokerd._tcp.local.")
	r.ClearSelection()
	if _, ok := r.Selected(); ok {
		t.Fatal("selection should be cleared")
	}
	if cleared != 0 {
		t.Fatalf("cleared fired %d times on manual clear, want 0", cleared)
	}
}

func TestServersSortedByIdentity(t *testing.T) {
	r := NewReconciler(nil)
	r.ApplySnapshot(map[string]protocol.ServerInfo{
		"z._stokerd._tcp.local.": {Port: 1},
		"a._stokerd._tcp.local.": {Port: 2},
		"m._stokerd._tcp.local.": {Port: 3},
	})
	servers := r.Servers()
	if servers[0].FullName != "a._stokerd._tcp.local." ||
		servers[1].FullName != "m._stokerd._tcp.local." ||
		servers[2].FullName != "z._stokerd._tcp.local." {
		t.Fatalf("servers not sorted: %#v", servers)
	}
}
