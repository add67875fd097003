// Package connection is the console's HTTP client for the platform API.
//
// Every call goes through one HTTPClient. The request stage attaches the
// bearer token when a session exists and stamps a request ID. The response
// stage surfaces envelope messages through the flash store, and on a 401
// while signed in it clears the session and performs a hard redirect to
// the login route.
//
// Requests are bound to the session lifetime: signing out cancels calls in
// flight, and a reply belonging to an earlier lifetime is returned to its
// caller without touching flash or navigation state.
package connection
