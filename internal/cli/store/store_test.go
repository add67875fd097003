package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/foxcodenine/iot-parking-console/internal/cli/connection"
	"github.com/foxcodenine/iot-parking-console/internal/cli/flash"
	"github.com/foxcodenine/iot-parking-console/internal/cli/session"
	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/internal/storage/memory"
	"github.com/foxcodenine/iot-parking-console/pkg/crypto/adaptive"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testToken = "eyJhbGciOiJIUzI1NiJ9." +
	base64.RawURLEncoding.EncodeToString([]byte(`{"exp":4102444800,"access_level":0}`)) + ".c2ln"

// backend records requests and answers from a route table.
type backend struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]json.RawMessage
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
}

func newBackend() *backend {
	return &backend{
		bodies: make(map[string]json.RawMessage),
		routes: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}
}

func (b *backend) on(methodPath string, status int, body string) {
	b.routes[methodPath] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	var body json.RawMessage
	json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+r.URL.RequestURI())
	b.bodies[key] = body
	h := b.routes[key]
	b.mu.Unlock()

	if h == nil {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (b *backend) last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return ""
	}
	return b.requests[len(b.requests)-1]
}

type harness struct {
	backend *backend
	api     *connection.HTTPClient
	session *session.Store
	flash   *flash.Store
	dash    *Dashboard
	app     *AppStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := newBackend()
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	sess := session.New(memory.New(), memory.New())
	fl := flash.New()
	api, err := connection.NewHTTPClient(connection.Config{BaseURL: server.URL}, connection.Deps{
		Session: sess,
		Flash:   fl,
	})
	if err != nil {
		t.Fatal(err)
	}
	cipher, err := adaptive.FromSecret(testSecret, adaptive.CipherAESGCM)
	if err != nil {
		t.Fatal(err)
	}
	dash := NewDashboard()
	return &harness{
		backend: b,
		api:     api,
		session: sess,
		flash:   fl,
		dash:    dash,
		app:     NewAppStore(server.URL, api, dash, sess, WithCipher(cipher)),
	}
}

func TestDashboard(t *testing.T) {
	d := NewDashboard()
	d.SetLoading(true)
	d.SetLoading(true)
	d.SetLoading(false)
	if !d.Loading() {
		t.Error("Loading() = false with one fetch outstanding")
	}
	d.SetLoading(false)
	d.SetLoading(false)
	if d.Loading() {
		t.Error("Loading() = true after all fetches ended")
	}

	if !d.ToggleUserMenu() || !d.UserMenuOpen() {
		t.Error("ToggleUserMenu() should open the menu")
	}
	d.SetUserMenu(false)
	if d.UserMenuOpen() {
		t.Error("SetUserMenu(false) did not close the menu")
	}
}

func TestDeviceStore_Fetch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"object keyed by id", `{"devices":{"d1":{"device_id":"d1","name":"Bravo"},"d2":{"name":"Alpha","is_hidden":true}}}`},
		{"array", `{"devices":[{"device_id":"d1","name":"Bravo"},{"device_id":"d2","name":"Alpha","is_hidden":true}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.backend.on("GET /api/device", http.StatusOK, tt.body)
			s := NewDeviceStore(h.api, h.dash)

			got, err := s.Fetch(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if h.backend.last() != "GET /api/device?map=true" {
				t.Errorf("request = %q", h.backend.last())
			}
			if len(got) != 2 || got[0].DeviceID != "d2" || got[1].DeviceID != "d1" {
				t.Errorf("Fetch() = %+v, want [d2 d1] sorted by name", got)
			}
			if visible := s.List(DeviceFilter{}); len(visible) != 1 {
				t.Errorf("List() = %d devices, want hidden one filtered", len(visible))
			}
			if !s.Fetched() {
				t.Error("Fetched() = false")
			}
			if h.dash.Loading() {
				t.Error("loading flag left raised")
			}
		})
	}
}

func TestDeviceStore_CRUD(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.backend.on("POST /api/device", http.StatusCreated, `{"message":"ok","device":{"device_id":"d9","name":"Bay 9","network_type":"NB-IoT"}}`)
	h.backend.on("PUT /api/device/d9", http.StatusOK, `{"device":{"device_id":"d9","name":"Bay 9b","network_type":"NB-IoT"}}`)
	h.backend.on("DELETE /api/device/d9", http.StatusOK, `{"message":"Device deleted successfully"}`)
	s := NewDeviceStore(h.api, h.dash)

	if _, err := s.Create(ctx, domain.Device{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Create() without id error = %v", err)
	}

	created, err := s.Create(ctx, domain.Device{DeviceID: "d9", Name: "Bay 9", NetworkType: "NB-IoT"})
	if err != nil {
		t.Fatal(err)
	}
	if created.Name != "Bay 9" {
		t.Errorf("created = %+v", created)
	}
	if _, ok := s.Lookup("d9"); !ok {
		t.Error("created device not listed")
	}

	updated, err := s.Update(ctx, "d9", map[string]any{"name": "Bay 9b"})
	if err != nil {
		t.Fatal(err)
	}
	if d, _ := s.Lookup("d9"); d.Name != "Bay 9b" || updated.Name != "Bay 9b" {
		t.Errorf("after update = %+v", d)
	}

	if err := s.Delete(ctx, "d9"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Lookup("d9"); ok {
		t.Error("deleted device still listed")
	}
}

func TestDeviceStore_UpdateWithoutDeviceInReply(t *testing.T) {
	h := newHarness(t)
	h.backend.on("PUT /api/device/d1", http.StatusOK, `{"message":"Devices updated successfully."}`)
	s := NewDeviceStore(h.api, h.dash)
	s.Push(domain.Device{DeviceID: "d1", Name: "Old", Latitude: 35.9})

	got, err := s.Update(context.Background(), "d1", map[string]any{"name": "New", "is_blocked": true})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "New" || !got.IsBlocked || got.Latitude != 35.9 {
		t.Errorf("Update() = %+v", got)
	}
}

func TestDeviceStore_ApplyParkingEvent(t *testing.T) {
	s := NewDeviceStore(nil, nil)
	s.Push(domain.Device{DeviceID: "d1", Name: "Bay 1"})

	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	if !s.ApplyParkingEvent(domain.ParkingEvent{DeviceID: "d1", IsOccupied: true, HappenedAt: at}) {
		t.Error("ApplyParkingEvent() = false for a listed device")
	}
	if d, _ := s.Lookup("d1"); !d.IsOccupied || !d.HappenedAt.Equal(at) {
		t.Errorf("device after event = %+v", d)
	}
	if s.ApplyParkingEvent(domain.ParkingEvent{DeviceID: "nope"}) {
		t.Error("ApplyParkingEvent() = true for an unknown device")
	}
}

func TestDeviceFilter(t *testing.T) {
	s := NewDeviceStore(nil, nil)
	s.Push(domain.Device{DeviceID: "860001", Name: "Harbour 1", NetworkType: "NB-IoT", IsOccupied: true})
	s.Push(domain.Device{DeviceID: "860002", Name: "Harbour 2", NetworkType: "LoRa"})
	s.Push(domain.Device{DeviceID: "860003", Name: "Square", NetworkType: "Sigfox"})

	occupied := true
	tests := []struct {
		name   string
		filter DeviceFilter
		want   []string
	}{
		{"all", DeviceFilter{}, []string{"860001", "860002", "860003"}},
		{"query name", DeviceFilter{Query: "harbour"}, []string{"860001", "860002"}},
		{"query id", DeviceFilter{Query: "003"}, []string{"860003"}},
		{"occupied", DeviceFilter{Occupied: &occupied}, []string{"860001"}},
		{"network", DeviceFilter{Network: "lora"}, []string{"860002"}},
		{"favorites", DeviceFilter{Only: []string{"860003"}}, []string{"860003"}},
		{"no favorites", DeviceFilter{Only: []string{}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, d := range s.List(tt.filter) {
				ids = append(ids, d.DeviceID)
			}
			if ids == nil {
				ids = []string{}
			}
			if !slices.Equal(ids, tt.want) {
				t.Errorf("List() = %v, want %v", ids, tt.want)
			}
		})
	}

	s.Reset()
	if len(s.List(DeviceFilter{})) != 0 || s.Fetched() {
		t.Error("Reset() left devices behind")
	}
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.backend.on("GET /api/user", http.StatusOK, `{"users":[{"id":3,"email":"c@example.com"},{"id":1,"email":"a@example.com","access_level":0}]}`)
	h.backend.on("POST /api/user", http.StatusOK, `{"message":"User created successfully.","user":{"id":4,"email":"d@example.com","access_level":3}}`)
	h.backend.on("PUT /api/user/4", http.StatusOK, `{"user":{"id":4,"email":"d@example.com","access_level":2}}`)
	h.backend.on("DELETE /api/user/3", http.StatusOK, `{"message":"User with ID 3 successfully deleted."}`)
	s := NewUserStore(h.api, h.dash)

	users, err := s.Fetch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0].ID != 1 {
		t.Errorf("Fetch() = %+v, want sorted by id", users)
	}

	if _, err := s.Create(ctx, domain.NewUser{Email: "d@example.com", Password: "pw", AccessLevel: 7}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Create() bad access level error = %v", err)
	}
	if _, err := s.Create(ctx, domain.NewUser{Email: "d@example.com", Password: "pw", AccessLevel: 3}); err != nil {
		t.Fatal(err)
	}
	var sent domain.NewUser
	json.Unmarshal(h.backend.bodies["POST /api/user"], &sent)
	if sent.Email != "d@example.com" || sent.Password != "pw" || sent.AccessLevel != 3 {
		t.Errorf("create body = %+v", sent)
	}

	if _, err := s.Update(ctx, 4, map[string]any{"access_level": 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, 3); err != nil {
		t.Fatal(err)
	}

	got := s.List()
	if len(got) != 2 || got[1].ID != 4 || got[1].AccessLevel != 2 {
		t.Errorf("List() = %+v", got)
	}

	s.Reset()
	if len(s.List()) != 0 {
		t.Error("Reset() left users behind")
	}
}

func TestDebugStore_Query(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.backend.on("GET /api/activity-logs/860001", http.StatusOK, `{"activity_logs":[{"id":1,"device_id":"860001","is_occupied":true}]}`)
	h.backend.on("GET /api/keepalive-logs/860001", http.StatusOK, `{"keepalive_logs":[{"id":2,"device_id":"860001","battery_percentage":88,"rsrp":-90}]}`)
	s := NewDebugStore(h.api, h.dash)

	if _, err := s.FetchActivityLogs(ctx); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("fetch without device error = %v", err)
	}
	if err := s.SetRange(2000, 1000); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("SetRange(reversed) error = %v", err)
	}

	s.SelectDevice("860001")
	if err := s.SetRange(1_700_000_000_500, 1_700_000_100_001); err != nil {
		t.Fatal(err)
	}

	logs, err := s.FetchActivityLogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := "GET /api/activity-logs/860001?from_date=1700000000&to_date=1700000101"; h.backend.last() != want {
		t.Errorf("request = %q, want %q", h.backend.last(), want)
	}
	if len(logs) != 1 || !logs[0].IsOccupied {
		t.Errorf("activity logs = %+v", logs)
	}

	ka, err := s.FetchKeepaliveLogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ka) != 1 || ka[0].BatteryPercentage != 88 || string(ka[0].Extra["rsrp"]) != "-90" {
		t.Errorf("keepalive logs = %+v", ka)
	}
	if len(s.ActivityLogs()) != 1 || len(s.KeepaliveLogs()) != 1 {
		t.Error("fetched logs not kept")
	}

	s.Reset()
	if s.SelectedDevice() != "" || len(s.ActivityLogs()) != 0 {
		t.Error("Reset() left state behind")
	}
}

func TestDebugStore_DefaultWindow(t *testing.T) {
	s := NewDebugStore(nil, nil)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }
	s.SelectDevice("x")

	if _, err := s.query(); err != nil {
		t.Fatal(err)
	}
	from, to := s.Range()
	if to != now.UnixMilli() || from != now.Add(-DefaultLogWindow).UnixMilli() {
		t.Errorf("Range() = %d..%d", from, to)
	}
}

func TestFloorCeilDiv(t *testing.T) {
	tests := []struct {
		a, floor, ceil int64
	}{
		{0, 0, 0},
		{1000, 1, 1},
		{1001, 1, 2},
		{999, 0, 1},
		{-1, -1, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, 1000); got != tt.floor {
			t.Errorf("floorDiv(%d) = %d, want %d", tt.a, got, tt.floor)
		}
		if got := ceilDiv(tt.a, 1000); got != tt.ceil {
			t.Errorf("ceilDiv(%d) = %d, want %d", tt.a, got, tt.ceil)
		}
	}
}

func TestAppStore_SettingsAndMap(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	m := NewMapStore(h.app)

	if c := m.Center(ctx); c != (LatLng{}) {
		t.Errorf("Center() without settings = %+v", c)
	}

	if err := h.app.SetSettings(ctx, domain.AppSettings{"default_latitude": "35.8989", "default_longitude": "14.5146"}); err != nil {
		t.Fatal(err)
	}
	if c := m.Center(ctx); c.Lat != 35.8989 || c.Lng != 14.5146 {
		t.Errorf("Center() = %+v", c)
	}
	if m.Zoom() != DefaultZoom {
		t.Errorf("Zoom() = %d, want %d", m.Zoom(), DefaultZoom)
	}

	m.SetCenter(LatLng{Lat: 1, Lng: 2})
	m.SetZoom(12)
	if m.Center(ctx) != (LatLng{Lat: 1, Lng: 2}) || m.Zoom() != 12 {
		t.Error("setters did not apply")
	}
	m.Reset()
	if m.Center(ctx).Lat != 35.8989 || m.Zoom() != DefaultZoom {
		t.Error("Reset() should return to the settings viewport")
	}
}

func TestAppStore_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.backend.on("PUT /api/setting", http.StatusOK, `{"message":"Settings updated."}`)

	if err := h.app.UpdateSettings(ctx, map[string]string{"default_zoom": "3"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("UpdateSettings() without password error = %v", err)
	}

	_ = h.app.SetSettings(ctx, domain.AppSettings{"google_api_key": "sealed", "default_latitude": "1"})
	err := h.app.UpdateSettings(ctx, map[string]string{
		"admin_password":   "pw",
		"default_latitude": "2",
		"google_api_key":   "AIzaNewKeyValue_1234567",
	})
	if err != nil {
		t.Fatal(err)
	}

	settings, _ := h.app.Settings(ctx)
	if settings["default_latitude"] != "2" {
		t.Errorf("default_latitude = %q, want 2", settings["default_latitude"])
	}
	if _, ok := settings["admin_password"]; ok {
		t.Error("admin_password must never be stored")
	}
	if _, ok := settings["google_api_key"]; ok {
		t.Error("stale sealed google_api_key should be dropped")
	}
}

func TestAppStore_GoogleAPIKey(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	if _, err := h.app.GoogleAPIKey(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GoogleAPIKey() without setting error = %v", err)
	}

	cipher, _ := adaptive.FromSecret(testSecret, adaptive.CipherAESGCM)
	sealed, err := adaptive.Seal(cipher, []byte("AIzaSyExampleKey"))
	if err != nil {
		t.Fatal(err)
	}
	if err := h.app.SetSettings(ctx, domain.AppSettings{"google_api_key": sealed}); err != nil {
		t.Fatal(err)
	}

	key, err := h.app.GoogleAPIKey(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if key != "AIzaSyExampleKey" {
		t.Errorf("GoogleAPIKey() = %q", key)
	}

	noKey := NewAppStore("", nil, nil, h.session)
	if _, err := noKey.GoogleAPIKey(ctx); !errors.Is(err, ErrNoSecret) {
		t.Errorf("GoogleAPIKey() without cipher error = %v", err)
	}
}

func TestAppStore_Favorites(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.backend.on("PUT /api/favorite", http.StatusOK, `{"message":"Favorites updated successfully."}`)

	if _, err := h.app.ToggleFavorite(ctx, "d1"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Errorf("ToggleFavorite() signed out error = %v", err)
	}

	if err := h.app.SetAuthUser(ctx, domain.AuthUser{ID: 1, Email: "a@example.com", Favorites: []string{"d1"}}); err != nil {
		t.Fatal(err)
	}
	on, err := h.app.ToggleFavorite(ctx, "d2")
	if err != nil || !on {
		t.Fatalf("ToggleFavorite(d2) = %v, %v", on, err)
	}
	on, _ = h.app.ToggleFavorite(ctx, "d1")
	if on {
		t.Error("ToggleFavorite(d1) should remove it")
	}
	if got := h.app.Favorites(ctx); !slices.Equal(got, []string{"d2"}) {
		t.Errorf("Favorites() = %v", got)
	}

	if err := h.app.UpdateFavorites(ctx); err != nil {
		t.Fatal(err)
	}
	var sent struct {
		DeviceIDs []string `json:"device_ids"`
	}
	json.Unmarshal(h.backend.bodies["PUT /api/favorite"], &sent)
	if !slices.Equal(sent.DeviceIDs, []string{"d2"}) {
		t.Errorf("favorites body = %+v", sent)
	}
	if got := h.flash.Messages(); len(got) != 0 {
		t.Errorf("singular message should not flash, got %v", got)
	}

	h.app.Reset(ctx)
	if _, ok := h.app.AuthUser(ctx); ok {
		t.Error("Reset() left the user behind")
	}
	if got := h.app.Favorites(ctx); len(got) != 0 {
		t.Errorf("Favorites() after reset = %v", got)
	}
}

func TestAuthStore_LoginLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	login, _ := json.Marshal(map[string]any{
		"token":    testToken,
		"user":     map[string]any{"id": 7, "email": "ops@example.com", "access_level": 0, "favorites": []string{"d1"}},
		"settings": map[string]string{"default_latitude": "35.9"},
	})
	h.backend.on("POST /api/auth/login", http.StatusOK, string(login))
	h.backend.on("POST /api/auth/logout", http.StatusOK, `{"message":"bye"}`)
	auth := NewAuthStore(h.api, h.session, h.app, h.dash, nil, "map", "login", "logout")

	h.session.SetRedirectTarget("devices")
	target, err := auth.Login(ctx, " ops@example.com ", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if target != "devices" {
		t.Errorf("Login() target = %q, want devices", target)
	}
	if !h.session.IsAuthenticated(ctx) || h.session.Token(ctx) != testToken {
		t.Error("Login() did not store the token")
	}
	if u, ok := h.app.AuthUser(ctx); !ok || u.ID != 7 {
		t.Errorf("AuthUser() = %+v, %v", u, ok)
	}
	if s, ok := h.app.Settings(ctx); !ok || s["default_latitude"] != "35.9" {
		t.Errorf("Settings() = %v", s)
	}

	if err := auth.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if h.backend.last() != "POST /api/auth/logout" {
		t.Errorf("last request = %q", h.backend.last())
	}
	if h.session.IsAuthenticated(ctx) {
		t.Error("Logout() left the session")
	}
	if _, ok := h.app.AuthUser(ctx); ok {
		t.Error("Logout() left the user")
	}
}

func TestAuthStore_LoginSkipsUselessTarget(t *testing.T) {
	h := newHarness(t)
	h.backend.on("POST /api/auth/login", http.StatusOK, `{"token":"`+testToken+`","user":{"id":1}}`)
	auth := NewAuthStore(h.api, h.session, h.app, h.dash, nil, "map", "login", "logout")

	h.session.SetRedirectTarget("logout")
	target, err := auth.Login(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if target != "map" {
		t.Errorf("Login() target = %q, want map", target)
	}
}

func TestAuthStore_LoginFailures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.backend.on("POST /api/auth/login", http.StatusUnauthorized, `{"messages":["Invalid credentials."]}`)
	auth := NewAuthStore(h.api, h.session, h.app, h.dash, nil, "map")

	if _, err := auth.Login(ctx, "", "pw"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Login() empty email error = %v", err)
	}
	_, err := auth.Login(ctx, "a@example.com", "wrong")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Login() error = %v, want ErrUnauthorized", err)
	}
	if h.session.IsAuthenticated(ctx) {
		t.Error("failed login stored a session")
	}
	if got := h.flash.Snapshot(); got.Severity != flash.SeverityError {
		t.Errorf("flash = %+v, want error", got)
	}
}

func TestAuthStore_LogoutIgnoresBackendFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.backend.on("POST /api/auth/logout", http.StatusInternalServerError, `oops`)
	auth := NewAuthStore(h.api, h.session, h.app, h.dash, nil, "map")

	if err := h.session.SetToken(ctx, testToken); err != nil {
		t.Fatal(err)
	}
	if err := auth.Logout(ctx); err != nil {
		t.Errorf("Logout() error = %v, want nil", err)
	}
	if h.session.IsAuthenticated(ctx) {
		t.Error("Logout() must clear locally whatever the backend said")
	}
}

func TestEnvStore(t *testing.T) {
	cipher, _ := adaptive.FromSecret(testSecret, adaptive.CipherAESGCM)
	sealed, _ := adaptive.Seal(cipher, []byte("s3cr3t"))

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/env" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"VITE_APP_URL": "https://parking.example.com", "DB_PASSWORD": sealed})
	}))
	defer server.Close()

	s := NewEnvStore(server.URL+"/", time.Second, cipher)
	env, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if env["VITE_APP_URL"] != "https://parking.example.com" {
		t.Errorf("Load() = %v", env)
	}
	if gotAuth != "" {
		t.Errorf("env service received Authorization %q", gotAuth)
	}
	if v, err := s.Reveal("DB_PASSWORD"); err != nil || v != "s3cr3t" {
		t.Errorf("Reveal() = %q, %v", v, err)
	}
	if _, err := s.Reveal("MISSING"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Reveal(missing) error = %v", err)
	}
	if _, err := s.Reveal("VITE_APP_URL"); !errors.Is(err, domain.ErrDecodeResponse) {
		t.Errorf("Reveal(plain) error = %v", err)
	}

	s.Reset()
	if len(s.Env()) != 0 {
		t.Error("Reset() left variables")
	}
}

func TestEnvStore_Errors(t *testing.T) {
	if _, err := NewEnvStore("", 0, nil).Load(context.Background()); !errors.Is(err, domain.ErrConfig) {
		t.Errorf("Load() without url error = %v", err)
	}

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()
	_, err := NewEnvStore(server.URL+"/missing", time.Second, nil).Load(context.Background())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Load() 404 error = %v", err)
	}
}
