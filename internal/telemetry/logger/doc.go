// Package logger provides structured logging for the console and the env
// service.
//
//   - logger.go: slog-backed Logger, levels, process default
//   - context.go: request ID propagation
//   - redact.go: masking of bearer tokens, passwords and secrets
//
// The console logs text to stderr at warn unless --verbose is given; the
// env service logs JSON to stdout.
package logger
