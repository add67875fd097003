// Package shutdown coordinates graceful termination of the env service and
// the interactive console.
//
// Hooks run in reverse registration order under a shared deadline, so
// resources opened last (HTTP listener, file watcher) close before the
// ones they depend on (storage tiers, loggers).
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown
