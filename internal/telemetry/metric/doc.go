// Package metric provides Prometheus metrics for the console and the env
// service.
//
//   - prometheus.go: private registry, the application's collectors and
//     the /metrics handler
//   - collector.go: build information collector
//
// Every recording method is safe on a nil *Registry, so components accept
// an optional registry without guarding each call.
package metric
