// Package config provides the env service configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation (listen address, TLS pair, env file, secret)
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader from a YAML file,
// PARKING_ENVD_* variables and flags.
package config
