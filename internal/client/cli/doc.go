// Package cli provides the interactive Campus Shop terminal client.
//
// It wires configuration, the local credential store, the API transport and
// the session, cart, checkout and order components into a REPL. Typical
// flow: restore the previous session, start a background connectivity
// watcher, and execute user commands until "exit".
//
// Key features:
//   - Register / Login / Logout, profile view and edit
//   - Cart: show, add, update, remove, clear
//   - Checkout with address and payment method selection
//   - Payment callback verification from a pasted callback URL
//   - Order history, cancellation, payment retry; seller order processing
//   - Transport statistics
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
