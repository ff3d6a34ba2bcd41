// Package daemon implements the console's session with a stokerd daemon.
//
// # Overview
//
// A Client is one WebSocket session. Traffic is JSON envelopes of the form
// {type, task_id, payload}:
//
//   - Requests (config.get, config.update, process.get, operation.perform,
//     daemon.shutdown) carry a fresh uuid task id; the daemon echoes it on
//     exactly one response envelope, which the Client routes back to the
//     waiting call.
//   - Pushes carry no task id and fan out to subscribers as typed Event
//     values, in delivery order.
//
// Acknowledgments confirm receipt, not completion: a lifecycle operation
// acks immediately and completes later via operation.performed or
// operation.failed pushes, with process.updated carrying the authoritative
// state change.
//
// # Liveness and failure
//
// The Client pings the daemon on a fixed cadence and keeps a read deadline
// two intervals out. A failed ping write, a missed deadline, or any read
// error publishes a single ConnectionFailure event and ends the session.
// Sessions are not reusable; reconnection is a fresh Dial by the caller
// (driven by the conn.Supervisor).
//
// # Policy
//
// The daemon protocol specifies no timeouts, so this package chooses and
// documents them: 30s per dial (up to 3 backoff-spaced handshakes per
// address), 10s per request/response call, 15s ping interval. All are
// Dialer fields.
package daemon
