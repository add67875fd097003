// Package session holds the console's authentication state.
//
// A Store keeps the bearer token in one of two storage tiers, chosen by the
// remember-me preference: the durable tier (survives restarts) or the
// ephemeral tier (lives for one interactive console). Writing the token to
// the active tier always removes it from the other, and Clear removes it
// from both, so a stale credential never survives a preference change.
//
// The token is never trusted here. Claims and IsExpired decode it on every
// call as a hint for the navigation guard; the backend's 401 is the only
// authority.
//
// Each stored token starts a lifetime: a generation ID and a context that
// Clear cancels. The HTTP client binds requests to the lifetime so that
// replies arriving after logout cannot act on the new state.
package session
