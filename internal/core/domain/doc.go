// Package domain defines the platform models the console works with and
// the error taxonomy shared by the console and the env service.
//
// Models mirror the JSON the platform backend returns. This package
// contains:
//
//   - Device, Beacon, ParkingEvent: parking sensors and their state changes
//   - User, AuthUser: platform accounts and the signed-in account
//   - ActivityLog, KeepaliveLog: per-device log rows
//   - AppSettings: the backend's app:settings hash
//   - Envelope: the {data, messages, actions} wrapper every API reply uses
//   - Errors: DomainError codes and APIError
//
// Nothing here performs IO.
package domain
