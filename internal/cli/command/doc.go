// Package command defines the parking-console commands with urfave/cli/v2.
//
// Every command that shows platform data first navigates to its route, so
// the same guard that protects the dashboard decides whether it may run:
//
//   - root.go: the app, global flags and the lazily built console
//   - auth.go: login, logout, whoami, remember-me
//   - device.go, user.go, logs.go: platform resources
//   - settings.go: app settings, map centre, favorites
//   - env.go: the env service
//   - config.go: local configuration
//   - repl.go: interactive mode
package command
