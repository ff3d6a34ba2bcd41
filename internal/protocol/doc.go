// Package protocol defines the data model shared between the stoker console
// and the stokerd daemon.
//
// # Overview
//
// Three concerns live here:
//
//   - Discovery identity: the mDNS service type and the Server descriptor
//     derived from discovery snapshots (display name, primary address).
//   - Configuration: ResolvedConfig with every derived field materialized,
//     plus ConfigMask recording which fields the user overrode. Arguments is
//     a tagged union (parsed shell string vs explicit list) with a custom
//     JSON form that only carries the payload its discriminant selects.
//   - Messaging: the {type, task_id, payload} envelope framing every
//     WebSocket message, and the typed payload structs per message type.
//
// The daemon is the authority for everything in this package; the console
// only echos these shapes back at it.
package protocol
