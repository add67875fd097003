package command

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/foxcodenine/iot-parking-console/internal/cli/app"
	"github.com/foxcodenine/iot-parking-console/internal/cli/config"
	"github.com/foxcodenine/iot-parking-console/internal/storage/memory"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
)

var liveToken = "eyJhbGciOiJIUzI1NiJ9." +
	base64.RawURLEncoding.EncodeToString([]byte(`{"exp":4102444800,"access_level":1,"email":"ops@example.com","user_id":1}`)) + ".c2ln"

// mockPlatform answers the platform API from a route table.
type mockPlatform struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []string
	bodies   map[string]map[string]any
}

func newMockPlatform(t *testing.T) *mockPlatform {
	t.Helper()
	m := &mockPlatform{
		handlers: make(map[string]http.HandlerFunc),
		bodies:   make(map[string]map[string]any),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)

		m.mu.Lock()
		m.requests = append(m.requests, r.Method+" "+r.URL.RequestURI())
		m.bodies[key] = body
		h := m.handlers[key]
		m.mu.Unlock()

		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(m.Close)

	m.handle("POST /api/auth/login", http.StatusOK, map[string]any{
		"token":    liveToken,
		"user":     map[string]any{"id": 1, "email": "ops@example.com", "access_level": 1, "favorites": []string{"a2"}},
		"settings": map[string]any{"default_latitude": "35.9", "default_longitude": "14.5"},
	})
	m.handle("POST /api/auth/logout", http.StatusOK, map[string]any{})
	return m
}

func (m *mockPlatform) handle(methodPath string, status int, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[methodPath] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(data)
	}
}

func (m *mockPlatform) body(methodPath string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bodies[methodPath]
}

func (m *mockPlatform) called(prefix string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if strings.HasPrefix(r, prefix) {
			return true
		}
	}
	return false
}

// testConsole is a console over memory tiers pointed at the mock platform.
func testConsole(t *testing.T, m *mockPlatform) *app.Console {
	t.Helper()
	cfg := config.Default()
	cfg.AppURL = m.URL
	cfg.EnvURL = ""

	con, err := app.New(context.Background(), cfg,
		app.WithDurable(memory.New()),
		app.WithEphemeral(memory.New()),
		app.WithLogger(logger.Discard()),
		app.WithFlashOutput(nil),
	)
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(func() { con.Close() })
	return con
}

// run executes one command line against con, like a REPL line.
func run(t *testing.T, con *app.Console, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(con)
	a.Reader = strings.NewReader(stdin)
	a.Writer = &stdout
	a.ErrWriter = &stderr
	err := a.RunContext(context.Background(), append([]string{"parking-console", "--config", t.TempDir() + "/console.yaml"}, args...))
	return stdout.String(), stderr.String(), err
}

func signIn(t *testing.T, con *app.Console) {
	t.Helper()
	if _, _, err := run(t, con, "", "login", "ops@example.com", "secret"); err != nil {
		t.Fatalf("login error = %v", err)
	}
}
