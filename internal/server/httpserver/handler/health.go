package handler

import (
	"net/http"
	"time"

	"github.com/foxcodenine/iot-parking-console/internal/infra/buildinfo"
)

// Health handles GET /health. The service stays healthy while the env
// file is unreadable; env_ok reports that separately.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	_, err := h.env.Vars()
	h.writeJSON(w, r, http.StatusOK, HealthStatus{
		Status:  "healthy",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
		EnvFile: h.envFile,
		EnvOK:   err == nil,
		Version: buildinfo.Version,
	})
}
