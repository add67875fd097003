package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/metric"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/env", nil))
	got := rec.Header().Get("X-Request-ID")
	if !strings.HasPrefix(got, "req-") || len(got) != len("req-")+26 {
		t.Errorf("X-Request-ID = %q, want req-<ulid>", got)
	}
	if seen != got {
		t.Errorf("context ID = %q, header = %q", seen, got)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/env", nil)
	req.Header.Set("X-Request-ID", "from-caller")
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "from-caller" {
		t.Errorf("X-Request-ID = %q, want caller's", got)
	}
}

func TestRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := newRequestID()
		if seen[id] {
			t.Fatalf("duplicate request ID %s", id)
		}
		seen[id] = true
	}
}

func TestChain(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(okHandler, mark("a"), mark("b"), mark("c")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("order = %v", order)
	}
}

func TestCORS(t *testing.T) {
	called := false
	h := CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	want := map[string]string{
		"Access-Control-Allow-Origin":      "*",
		"Access-Control-Allow-Methods":     "GET, OPTIONS",
		"Access-Control-Allow-Headers":     "Content-Type, Authorization",
		"Access-Control-Allow-Credentials": "true",
	}

	for _, method := range []string{http.MethodGet, http.MethodOptions} {
		called = false
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/anything/at/all", nil))

		for k, v := range want {
			if got := rec.Header().Get(k); got != v {
				t.Errorf("%s %s = %q, want %q", method, k, got, v)
			}
		}
		if _, ok := rec.Header()["Access-Control-Expose-Headers"]; !ok {
			t.Errorf("%s: Access-Control-Expose-Headers missing", method)
		}

		if method == http.MethodOptions {
			if rec.Code != http.StatusNoContent || called {
				t.Errorf("OPTIONS: status %d, next called %v", rec.Code, called)
			}
		} else if !called {
			t.Error("GET did not reach next")
		}
	}
}

func TestRateLimit(t *testing.T) {
	reg := metric.NewRegistry()
	h := RateLimit(1, 2, reg)(okHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/env", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if send("10.0.0.1") != http.StatusOK || send("10.0.0.1") != http.StatusOK {
		t.Fatal("burst requests should pass")
	}
	if got := send("10.0.0.1"); got != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", got)
	}
	if got := send("10.0.0.2"); got != http.StatusOK {
		t.Errorf("other client = %d, want 200", got)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(0, 0, nil)(okHandler)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/env", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, rec.Code)
		}
	}
}

func TestRateLimit_Concurrent(t *testing.T) {
	h := RateLimit(1000, 1000, nil)(okHandler)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/env", nil))
		}()
	}
	wg.Wait()
}

func TestIPLimiter_SweepsIdleClients(t *testing.T) {
	l := newIPLimiter(1, 1)
	start := time.Now()
	l.swept = start
	l.allow("a", start)
	l.allow("b", start.Add(limiterTTL/2))

	l.allow("b", start.Add(limiterTTL+time.Minute))
	if _, ok := l.clients["a"]; ok {
		t.Error("idle client a should have been swept")
	}
	if _, ok := l.clients["b"]; !ok {
		t.Error("active client b was swept")
	}
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Recover(), RequestID(logger.Discard()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/env", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["code"] != "PC-SYS-5000" || body["request_id"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	l, _ := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), RequestID(l), Audit())

	req := httptest.NewRequest(http.MethodGet, "/env", nil)
	req.Header.Set("X-Request-ID", "audit-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("audit line = %q: %v", buf.String(), err)
	}
	if entry["level"] != "WARN" || entry["status"] != float64(http.StatusTeapot) ||
		entry["path"] != "/env" || entry["request_id"] != "audit-1" {
		t.Errorf("audit entry = %v", entry)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.168.1.1:1234", "192.168.1.1"},
		{"ipv6", nil, "[::1]:8080", "::1"},
		{"forwarded for", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:1", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "1.1.1.1:1", "10.0.0.9"},
		{"no port", nil, "192.168.1.1", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	rw.WriteHeader(http.StatusNotFound)
	if rw.statusCode != http.StatusNotFound || rec.Code != http.StatusNotFound {
		t.Errorf("statusCode = %d, recorder = %d", rw.statusCode, rec.Code)
	}
}
