// Package handler implements the env service endpoints.
//
//   - GET /env: the published variables as a flat JSON object
//   - GET /health: liveness in the standard response envelope
//   - anything else: 404 with a plain "Not Found" body
package handler
