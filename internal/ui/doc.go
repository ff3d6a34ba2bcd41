// Package ui provides the Bubble Tea terminal interface for the stoker
// console.
//
// The model is single-threaded: every mutation of the reconciler, the
// connection machines, the config tracker, and the operation tracker
// happens inside Update. Blocking work (dialing, facade calls, waiting on
// subscription channels) runs in commands, and their results come back as
// messages.
//
// Three views:
//
//   - Connect: discovered daemons plus a manual host/port target. Selection
//     is frozen while a connect attempt is in flight.
//   - Console: live scrollback of the managed server's output, an input
//     line forwarded to its stdin, and lifecycle actions gated by the
//     operation tracker.
//   - Config: a form over the daemon's launch configuration, dirty against
//     the last daemon-acknowledged baseline.
package ui
