package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grandcat/zeroconf"

	"github.com/stokerd/console/internal/protocol"
)

// Browse watches the local network for stokerd daemons via DNS-SD. Every
// service event yields a fresh whole-set snapshot on the returned channel,
// keyed by service instance identity. The channel closes when ctx ends.
//
// Resolvers only announce appearing instances, so entries persist until the
// next browse session; consumers treat each snapshot as the complete truth
// regardless.
func Browse(ctx context.Context) (<-chan map[string]protocol.ServerInfo, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("create mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry, 8)
	snapshots := make(chan map[string]protocol.ServerInfo, 1)

	go func() {
		defer close(snapshots)
		known := make(map[string]protocol.ServerInfo)
		for entry := range entries {
			if entry == nil {
				continue
			}
			info := protocol.ServerInfo{Port: entry.Port}
			for _, ip := range entry.AddrIPv4 {
				info.Addresses = append(info.Addresses, ip.String())
			}
			for _, ip := range entry.AddrIPv6 {
				info.Addresses = append(info.Addresses, ip.String())
			}
			identity := entry.ServiceInstanceName()
			known[identity] = info
			slog.Debug("daemon resolved", "identity", identity, "port", entry.Port)

			snapshot := make(map[string]protocol.ServerInfo, len(known))
			for k, v := range known {
				snapshot[k] = protocol.ServerInfo{
					Addresses: append([]string(nil), v.Addresses...),
					Port:      v.Port,
				}
			}
			select {
			case snapshots <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, protocol.ServiceType, protocol.Domain, entries); err != nil {
		return nil, fmt.Errorf("browse for daemons: %w", err)
	}
	return snapshots, nil
}
