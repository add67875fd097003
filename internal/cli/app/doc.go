// Package app wires the console together: storage tiers, session, flash
// messages, the guarded router, the API client and the resource stores.
//
// A Console is one "tab": it owns the ephemeral tier, so a session that
// was not remembered ends with it.
package app
