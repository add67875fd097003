package metric

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_EnvObservations(t *testing.T) {
	r := NewRegistry()

	r.ObserveEnvRequest(200)
	r.ObserveEnvRequest(200)
	r.ObserveEnvReload(3, nil)

	if got := testutil.ToFloat64(r.EnvRequests.WithLabelValues("200")); got != 2 {
		t.Errorf("env_requests_total{status=200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.EnvFileKeys); got != 3 {
		t.Errorf("env_file_keys = %v, want 3", got)
	}

	r.ObserveEnvReload(0, errors.New("boom"))
	if got := testutil.ToFloat64(r.EnvReloads.WithLabelValues("error")); got != 1 {
		t.Errorf("env_reloads_total{result=error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.EnvFileKeys); got != 0 {
		t.Errorf("env_file_keys after error = %v, want 0", got)
	}
}

func TestRegistry_ConsoleObservations(t *testing.T) {
	r := NewRegistry()

	r.ObserveHTTP("GET", 200, 5*time.Millisecond)
	r.ObserveHTTP("GET", 0, time.Millisecond)
	r.ObserveGuard("allowed")
	r.ObserveHardRedirect()
	r.ObserveRateLimited()

	if got := testutil.ToFloat64(r.HTTPRequests.WithLabelValues("GET", "error")); got != 1 {
		t.Errorf("http_requests_total{status=error} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.HTTPDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(r.GuardDecisions.WithLabelValues("allowed")); got != 1 {
		t.Errorf("guard_decisions_total = %v", got)
	}
	if got := testutil.ToFloat64(r.HardRedirects); got != 1 {
		t.Errorf("hard_redirects_total = %v", got)
	}
	if got := testutil.ToFloat64(r.RateLimited); got != 1 {
		t.Errorf("rate_limited_total = %v", got)
	}
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	r.ObserveEnvRequest(200)
	r.ObserveEnvReload(1, nil)
	r.ObserveRateLimited()
	r.ObserveHTTP("GET", 200, time.Second)
	r.ObserveGuard("blocked")
	r.ObserveHardRedirect()
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ObserveEnvRequest(200)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"parking_envd_env_requests_total",
		"parking_build_info",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestCollector(t *testing.T) {
	if got := testutil.CollectAndCount(NewCollector()); got != 1 {
		t.Errorf("build info series = %d, want 1", got)
	}
}
