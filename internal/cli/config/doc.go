// Package config defines the console configuration.
//
// Values are layered: defaults, then ~/.parking-console/console.yaml, then
// PARKING_CONSOLE_* environment variables, then command-line flags. Nested
// keys use a double underscore in the environment:
// PARKING_CONSOLE_STORAGE__BACKEND=redis sets storage.backend.
package config
