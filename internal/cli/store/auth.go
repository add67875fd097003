package store

import (
	"context"
	"strings"

	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
)

// Session is the part of the session store the sign-in flow drives.
type Session interface {
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	TakeRedirectTarget() string
}

// AuthStore runs sign-in and sign-out.
type AuthStore struct {
	api     API
	session Session
	app     *AppStore
	dash    *Dashboard
	logger  logger.Logger

	// home is where a login lands when the recorded target is not
	// worth returning to.
	home string
	skip map[string]bool
}

// NewAuthStore creates the sign-in flow. home is the landing route and
// skip lists routes never returned to after login (login, logout, ...).
func NewAuthStore(api API, sess Session, app *AppStore, dash *Dashboard, l logger.Logger, home string, skip ...string) *AuthStore {
	if l == nil {
		l = logger.Discard()
	}
	s := &AuthStore{
		api:     api,
		session: sess,
		app:     app,
		dash:    dash,
		logger:  l,
		home:    home,
		skip:    make(map[string]bool, len(skip)),
	}
	for _, r := range skip {
		s.skip[r] = true
	}
	return s
}

// Login exchanges credentials for a token, stores the session and returns
// the route to continue to.
func (s *AuthStore) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", domain.ErrInvalidArgument.WithDetails("email and password are required")
	}

	var resp domain.LoginResponse
	err := track(s.dash, func() error {
		return s.api.Post(ctx, "/api/auth/login", map[string]string{
			"email":    email,
			"password": password,
		}, &resp)
	})
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", domain.ErrDecodeResponse.WithDetails("login reply has no token")
	}

	if err := s.session.SetToken(ctx, resp.Token); err != nil {
		return "", err
	}
	if err := s.app.SetAuthUser(ctx, resp.User); err != nil {
		return "", domain.ErrStorage.WithDetails("store user").WithCause(err)
	}
	settings := resp.Settings
	if settings == nil {
		settings = domain.AppSettings{}
	}
	if err := s.app.SetSettings(ctx, settings); err != nil {
		return "", domain.ErrStorage.WithDetails("store settings").WithCause(err)
	}

	s.logger.Info("signed in", "user_id", resp.User.ID, "access_level", resp.User.AccessLevel)

	target := s.session.TakeRedirectTarget()
	if target == "" || s.skip[target] {
		target = s.home
	}
	return target, nil
}

// Logout tells the backend and then clears local state whatever the
// backend said. Only local storage failures are returned.
func (s *AuthStore) Logout(ctx context.Context) error {
	if s.session.IsAuthenticated(ctx) {
		if err := s.api.Post(ctx, "/api/auth/logout", nil, nil); err != nil {
			s.logger.Warn("logout request failed", "error", err)
		}
	}
	s.app.Reset(ctx)
	return s.session.Clear(ctx)
}
