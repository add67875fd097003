// Package main provides the entry point for parking-envd.
//
// parking-envd publishes a dotenv file as JSON at GET /env for the console
// and browser clients, with permissive CORS. Keys listed in
// env.sealed_keys are encrypted with env.secret_key before they leave the
// process.
//
// Usage:
//
//	parking-envd --config /etc/parking-envd.yaml
//	parking-envd --env-file ./.env --addr :9090
package main
