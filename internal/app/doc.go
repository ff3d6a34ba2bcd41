// Package app provides the orchestration layer for the stoker console.
//
// # Overview
//
// This package wires together preferences, logging, client-mode detection,
// discovery, and the UI to create the complete console experience. It is
// the composition root where all dependencies are initialized and
// connected.
//
// # Startup
//
//  1. Load user preferences from ~/.config/stoker/prefs.toml
//  2. Open a file-backed logger (the TUI owns the terminal)
//  3. Probe the client mode once: a reachable stokerd unix socket means
//     Local, otherwise Remote
//  4. Remote only: start browsing mDNS for _stokerd._tcp daemons
//  5. Start the TUI and block until the user exits or the context cancels
//
// The UI drives everything from there: connecting (remembered endpoint,
// discovered daemon, or manual target), the live server console, and the
// config editor.
//
// # Error Handling
//
// Fatal errors (returned from Run): logging initialization failure.
// Recoverable: discovery being unavailable only logs a warning, since a
// manual host/port target still works without mDNS.
package app
