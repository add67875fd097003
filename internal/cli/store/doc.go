// Package store holds the console's resource state: devices, users,
// activity and keepalive logs, map view, app settings, the env service
// map, and the sign-in flow.
//
// Stores are constructed once by the composition root and talk to the
// platform through the shared HTTP client. Each store guards its own
// state with a mutex and never holds it across a network call.
package store

import "context"

// API is the HTTP client surface the stores use.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}
