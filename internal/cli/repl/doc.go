// Package repl is the interactive mode of parking-console.
//
// The REPL plays the part of a browser tab: it keeps one console (and so
// one ephemeral storage tier) alive for its whole run, and every line is
// dispatched as a navigation through the guarded router.
//
//   - repl.go: the read loop, built-ins and argument splitting
//   - completer.go: prefix completion over command names and routes
//   - history.go: persisted line history
package repl
