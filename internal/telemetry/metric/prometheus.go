package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parking"

// Registry holds the application's collectors on a private registry.
type Registry struct {
	reg *prometheus.Registry

	EnvRequests    *prometheus.CounterVec
	EnvReloads     *prometheus.CounterVec
	EnvFileKeys    prometheus.Gauge
	RateLimited    prometheus.Counter
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	GuardDecisions *prometheus.CounterVec
	HardRedirects  prometheus.Counter
}

// NewRegistry creates a registry with Go runtime, process and build info
// collectors plus the application's own.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		EnvRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "envd",
			Name:      "env_requests_total",
			Help:      "Requests served by the env service, by status code",
		}, []string{"status"}),
		EnvReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "envd",
			Name:      "env_reloads_total",
			Help:      "Env file parses, by result",
		}, []string{"result"}),
		EnvFileKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "envd",
			Name:      "env_file_keys",
			Help:      "Number of keys in the last parsed env file",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "envd",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "console",
			Name:      "http_requests_total",
			Help:      "Backend API calls made by the console, by method and status",
		}, []string{"method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "console",
			Name:      "http_request_duration_seconds",
			Help:      "Backend API call latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		GuardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "console",
			Name:      "guard_decisions_total",
			Help:      "Navigation guard outcomes, by final state",
		}, []string{"state"}),
		HardRedirects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "console",
			Name:      "hard_redirects_total",
			Help:      "Hard redirects to the login route",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NewCollector(),
		r.EnvRequests,
		r.EnvReloads,
		r.EnvFileKeys,
		r.RateLimited,
		r.HTTPRequests,
		r.HTTPDuration,
		r.GuardDecisions,
		r.HardRedirects,
	)

	return r
}

// Registerer exposes the registry for collectors owned by other packages.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer exposes the registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns the /metrics handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveEnvRequest counts one env service response.
func (r *Registry) ObserveEnvRequest(status int) {
	if r == nil {
		return
	}
	r.EnvRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// ObserveEnvReload records the outcome of parsing the env file.
func (r *Registry) ObserveEnvReload(keys int, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.EnvReloads.WithLabelValues("error").Inc()
		r.EnvFileKeys.Set(0)
		return
	}
	r.EnvReloads.WithLabelValues("ok").Inc()
	r.EnvFileKeys.Set(float64(keys))
}

// ObserveRateLimited counts one rejected request.
func (r *Registry) ObserveRateLimited() {
	if r == nil {
		return
	}
	r.RateLimited.Inc()
}

// ObserveHTTP records one backend call. Status 0 means the call failed
// before a response arrived.
func (r *Registry) ObserveHTTP(method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	r.HTTPRequests.WithLabelValues(method, label).Inc()
	r.HTTPDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveGuard counts one navigation guard outcome.
func (r *Registry) ObserveGuard(state string) {
	if r == nil {
		return
	}
	r.GuardDecisions.WithLabelValues(state).Inc()
}

// ObserveHardRedirect counts one hard redirect.
func (r *Registry) ObserveHardRedirect() {
	if r == nil {
		return
	}
	r.HardRedirects.Inc()
}
