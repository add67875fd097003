// Package tlsroots builds TLS configuration for both sides of the wire.
//
//   - roots.go: trust store for the console's HTTP client (system roots
//     plus an optional private CA bundle, common for on-premises
//     deployments of the parking platform)
//   - reload.go: server certificate for the env service, swapped in place
//     when the files on disk change
package tlsroots
