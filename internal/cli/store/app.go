package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/internal/storage"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
	"github.com/foxcodenine/iot-parking-console/pkg/crypto/adaptive"
)

// Values stores serialized client state in the active session tier.
type Values interface {
	Put(ctx context.Context, key, value string) error
	Value(ctx context.Context, key string) (string, bool)
	Remove(ctx context.Context, key string) error
}

// ErrNoSecret is returned when a sealed setting is read without a key.
var ErrNoSecret = errors.New("no secret key configured")

// AppStore holds app-wide state: the app settings hash and the signed-in
// user, both persisted alongside the token.
type AppStore struct {
	appURL string
	api    API
	dash   *Dashboard
	values Values
	cipher adaptive.Cipher
	logger logger.Logger

	mu        sync.Mutex
	googleKey string
}

// AppOption configures an AppStore.
type AppOption func(*AppStore)

// WithCipher sets the cipher used to open sealed settings.
func WithCipher(c adaptive.Cipher) AppOption {
	return func(s *AppStore) {
		s.cipher = c
	}
}

// WithAppLogger sets the logger.
func WithAppLogger(l logger.Logger) AppOption {
	return func(s *AppStore) {
		s.logger = l
	}
}

// NewAppStore creates an app store.
func NewAppStore(appURL string, api API, dash *Dashboard, values Values, opts ...AppOption) *AppStore {
	s := &AppStore{
		appURL: appURL,
		api:    api,
		dash:   dash,
		values: values,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppURL returns the platform origin.
func (s *AppStore) AppURL() string {
	return s.appURL
}

// Settings returns the stored app settings.
func (s *AppStore) Settings(ctx context.Context) (domain.AppSettings, bool) {
	raw, ok := s.values.Value(ctx, storage.KeyAppSettings)
	if !ok || raw == "" {
		return nil, false
	}
	var settings domain.AppSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.logger.Warn("stored app settings are unreadable", "error", err)
		return nil, false
	}
	return settings, true
}

// SetSettings stores the app settings.
func (s *AppStore) SetSettings(ctx context.Context, settings domain.AppSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.googleKey = ""
	s.mu.Unlock()
	return s.values.Put(ctx, storage.KeyAppSettings, string(data))
}

// AuthUser returns the stored signed-in user.
func (s *AppStore) AuthUser(ctx context.Context) (*domain.AuthUser, bool) {
	raw, ok := s.values.Value(ctx, storage.KeyAuthUser)
	if !ok || raw == "" {
		return nil, false
	}
	var u domain.AuthUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Warn("stored user is unreadable", "error", err)
		return nil, false
	}
	return &u, true
}

// SetAuthUser stores the signed-in user.
func (s *AppStore) SetAuthUser(ctx context.Context, u domain.AuthUser) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.values.Put(ctx, storage.KeyAuthUser, string(data))
}

// Favorites returns the signed-in user's favorite device IDs.
func (s *AppStore) Favorites(ctx context.Context) []string {
	u, ok := s.AuthUser(ctx)
	if !ok || u.Favorites == nil {
		return []string{}
	}
	return u.Favorites
}

// ToggleFavorite adds or removes a device locally and reports whether it
// is now a favorite. UpdateFavorites sends the result.
func (s *AppStore) ToggleFavorite(ctx context.Context, deviceID string) (bool, error) {
	u, ok := s.AuthUser(ctx)
	if !ok {
		return false, domain.ErrNotAuthenticated
	}
	on := u.ToggleFavorite(deviceID)
	return on, s.SetAuthUser(ctx, *u)
}

// UpdateFavorites sends the local favorites list.
func (s *AppStore) UpdateFavorites(ctx context.Context) error {
	u, ok := s.AuthUser(ctx)
	if !ok {
		return domain.ErrNotAuthenticated
	}
	ids := u.Favorites
	if ids == nil {
		ids = []string{}
	}
	return track(s.dash, func() error {
		return s.api.Put(ctx, "/api/favorite", map[string][]string{"device_ids": ids}, nil)
	})
}

// UpdateSettings changes app settings. The backend requires the caller's
// password in admin_password. Accepted plain settings are merged into the
// stored hash; a new google_api_key is sealed by the backend, so the
// stored one is dropped until the next sign-in.
func (s *AppStore) UpdateSettings(ctx context.Context, fields map[string]string) error {
	if fields["admin_password"] == "" {
		return domain.ErrInvalidArgument.WithDetails("admin_password is required")
	}
	err := track(s.dash, func() error {
		return s.api.Put(ctx, "/api/setting", fields, nil)
	})
	if err != nil {
		return err
	}

	settings, _ := s.Settings(ctx)
	if settings == nil {
		settings = domain.AppSettings{}
	}
	for k, v := range fields {
		switch k {
		case "admin_password":
		case domain.SettingGoogleAPIKey:
			delete(settings, k)
		default:
			settings[k] = v
		}
	}
	return s.SetSettings(ctx, settings)
}

// GoogleAPIKey opens the sealed google_api_key setting. The result is
// cached until the settings change.
func (s *AppStore) GoogleAPIKey(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.googleKey != "" {
		k := s.googleKey
		s.mu.Unlock()
		return k, nil
	}
	s.mu.Unlock()

	settings, ok := s.Settings(ctx)
	if !ok || settings[domain.SettingGoogleAPIKey] == "" {
		return "", domain.ErrNotFound.WithDetails("google_api_key is not set")
	}
	if s.cipher == nil {
		return "", ErrNoSecret
	}
	plain, err := adaptive.Open(s.cipher, settings[domain.SettingGoogleAPIKey])
	if err != nil {
		return "", domain.ErrDecodeResponse.WithDetails("google_api_key").WithCause(err)
	}

	s.mu.Lock()
	s.googleKey = string(plain)
	s.mu.Unlock()
	return string(plain), nil
}

// Reset forgets the settings, the signed-in user and the cached key.
func (s *AppStore) Reset(ctx context.Context) {
	s.mu.Lock()
	s.googleKey = ""
	s.mu.Unlock()

	if err := s.values.Remove(ctx, storage.KeyAppSettings); err != nil {
		s.logger.Warn("remove app settings", "error", err)
	}
	if err := s.values.Remove(ctx, storage.KeyAuthUser); err != nil {
		s.logger.Warn("remove user", "error", err)
	}
}
