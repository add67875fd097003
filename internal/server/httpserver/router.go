package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/foxcodenine/iot-parking-console/internal/server/httpserver/handler"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Env yields the published variables.
	Env handler.EnvSource

	// EnvFile is reported by /health.
	EnvFile string

	Logger logger.Logger

	// Metrics receives counters. /metrics is served when ExposeMetrics is
	// set.
	Metrics       *metric.Registry
	ExposeMetrics bool

	// RateLimitRPS and RateLimitBurst configure the per-IP limiter.
	RateLimitRPS   float64
	RateLimitBurst int

	// EnableAudit logs every request.
	EnableAudit bool
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:         logger.Discard(),
		RateLimitRPS:   20,
		RateLimitBurst: 40,
		EnableAudit:    true,
	}
}

// NewRouter builds the service handler.
// Order: Recover -> RequestID -> CORS -> Audit -> RateLimit -> routes.
// CORS sits outside the router so OPTIONS is answered on any path.
func NewRouter(cfg *RouterConfig) http.Handler {
	l := cfg.Logger
	if l == nil {
		l = logger.Discard()
	}
	h := handler.New(cfg.Env, cfg.EnvFile, l, cfg.Metrics)

	r := mux.NewRouter()
	r.HandleFunc("/env", h.Env).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if cfg.ExposeMetrics && cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.NotFound)

	middlewares := []Middleware{Recover(), RequestID(l), CORS()}
	if cfg.EnableAudit {
		middlewares = append(middlewares, Audit())
	}
	middlewares = append(middlewares, RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Metrics))

	return Chain(r, middlewares...)
}
