// Package router is the console's route table and navigation guard.
//
// Every navigation attempt (a REPL line, a single command) passes through
// Router.Navigate exactly once. The guard decays flash messages, sends
// signed-out users to the login route while remembering where they were
// headed, and signs out sessions whose token has expired. It never lets a
// signed-out user reach a protected route.
//
// The expiry check reads the token without verifying it. It only saves a
// round trip: the backend's 401, handled by the HTTP client through
// HardRedirect, remains the authority.
package router
