// Package httpserver serves the env service over HTTP.
//
// Routes are matched with gorilla/mux; every request passes through the
// middleware chain Recover, RequestID, CORS, Audit and RateLimit.
// OPTIONS on any path is answered with 204 before routing.
package httpserver
