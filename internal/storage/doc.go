// Package storage provides the persistence tiers behind the console's
// session state.
//
// Two tiers exist, mirroring how a browser keeps credentials:
//
//   - Durable: survives restarts. Backed by Badger on local disk, or by
//     Redis when several workstations share one console identity.
//   - Ephemeral: lives as long as one interactive console (see package
//     memory).
//
// Every key is namespaced with KeyPrefix so a shared Redis database or
// state directory never collides with keys written by other tools.
// Sealed wraps any tier and encrypts values at rest.
package storage
