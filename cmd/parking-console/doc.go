// Package main provides the entry point for parking-console.
//
// parking-console is the administrative console of the parking sensor
// platform: sign-in, devices, users, activity and keepalive logs, map and
// app settings, plus the env service reader.
//
// Usage:
//
//	parking-console login ops@example.com
//	parking-console device list -o json
//	parking-console repl
//
// Single commands keep a session only with --remember; the repl keeps it
// for its lifetime.
package main
