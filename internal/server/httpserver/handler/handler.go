package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/metric"
)

// EnvSource yields the published variables. On error it still returns a
// usable (possibly empty) map.
type EnvSource interface {
	Vars() (map[string]string, error)
}

// Handler serves the env service endpoints.
type Handler struct {
	env     EnvSource
	envFile string
	logger  logger.Logger
	metrics *metric.Registry
	started time.Time
}

// New creates a Handler. envFile is only reported by /health.
func New(env EnvSource, envFile string, l logger.Logger, m *metric.Registry) *Handler {
	if l == nil {
		l = logger.Discard()
	}
	return &Handler{
		env:     env,
		envFile: envFile,
		logger:  l,
		metrics: m,
		started: time.Now(),
	}
}

// Env handles GET /env.
func (h *Handler) Env(w http.ResponseWriter, r *http.Request) {
	vars, err := h.env.Vars()
	if err != nil {
		logger.L(r.Context()).Error("failed to read env file", "path", h.envFile, "error", err)
	}
	if vars == nil {
		vars = map[string]string{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(vars); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
	h.metrics.ObserveEnvRequest(http.StatusOK)
}

// NotFound answers every unknown route.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("Not Found"))
	h.metrics.ObserveEnvRequest(http.StatusNotFound)
}

// writeJSON writes data in the standard envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	response := NewResponse(logger.RequestIDFromContext(r.Context()), data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes an error in the standard envelope. Middlewares use it
// for their own rejections.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	response := NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, message, nil)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
