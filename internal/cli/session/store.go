package session

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/internal/storage"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
	"github.com/foxcodenine/iot-parking-console/pkg/token"
)

// DefaultRedirectTarget is where a successful login lands when no blocked
// navigation was recorded.
const DefaultRedirectTarget = "map"

// Store is the session store. It is safe for concurrent use.
type Store struct {
	durable   storage.Tier
	ephemeral storage.Tier
	logger    logger.Logger
	now       func() time.Time

	mu         sync.Mutex
	redirect   string
	generation string
	lifetime   context.Context
	cancel     context.CancelFunc
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithClock overrides the wall clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a session store over the two tiers.
func New(durable, ephemeral storage.Tier, opts ...Option) *Store {
	s := &Store{
		durable:   durable,
		ephemeral: ephemeral,
		logger:    logger.Discard(),
		now:       time.Now,
		redirect:  DefaultRedirectTarget,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tiers returns (active, other) for the current preference.
func (s *Store) tiers(ctx context.Context) (storage.Tier, storage.Tier) {
	if s.RememberMe(ctx) {
		return s.durable, s.ephemeral
	}
	return s.ephemeral, s.durable
}

// SetToken stores tok in the active tier and removes it from the other.
// A new session lifetime begins; requests bound to the previous one are
// cancelled.
func (s *Store) SetToken(ctx context.Context, tok string) error {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return domain.ErrInvalidArgument.WithDetails("empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	active, other := s.tiers(ctx)
	if err := active.Set(ctx, storage.KeyToken, tok); err != nil {
		return domain.ErrStorage.WithDetails("store token").WithCause(err)
	}
	if err := other.Delete(ctx, storage.KeyToken); err != nil {
		return domain.ErrStorage.WithDetails("clear inactive tier").WithCause(err)
	}

	s.retireLocked()
	s.startLocked()

	s.logger.Debug("session token stored", "generation", s.generation, "remember_me", active == s.durable)
	return nil
}

// Clear removes the token from both tiers, unconditionally, and ends the
// session lifetime. Both deletions are attempted even if one fails.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errD := s.durable.Delete(ctx, storage.KeyToken)
	errE := s.ephemeral.Delete(ctx, storage.KeyToken)

	gen := s.generation
	s.retireLocked()
	s.logger.Debug("session cleared", "generation", gen)

	if err := errors.Join(errD, errE); err != nil {
		return domain.ErrStorage.WithDetails("clear token").WithCause(err)
	}
	return nil
}

// Token returns the stored token from the active tier, falling back to
// the other tier, or "" if none.
func (s *Store) Token(ctx context.Context) string {
	active, other := s.tiers(ctx)
	for _, t := range []storage.Tier{active, other} {
		v, ok, err := storage.Lookup(ctx, t, storage.KeyToken)
		if err != nil {
			s.logger.Warn("read token failed", "error", err)
			continue
		}
		if v = strings.TrimSpace(v); ok && v != "" {
			return v
		}
	}
	return ""
}

// IsAuthenticated reports whether a non-empty token is present in either
// tier.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// Claims decodes the stored token. Absent and malformed tokens both yield
// ok=false; the distinction is only logged.
func (s *Store) Claims(ctx context.Context) (*token.Payload, bool) {
	raw := s.Token(ctx)
	p, err := token.Decode(raw)
	if err != nil {
		if !errors.Is(err, token.ErrAbsent) {
			s.logger.Debug("stored token is not decodable", "error", err)
		}
		return nil, false
	}
	return p, true
}

// IsExpired reports whether a stored token should no longer be used: its
// exp claim is in the past, or it cannot be decoded at all. No token means
// nothing to expire.
func (s *Store) IsExpired(ctx context.Context) bool {
	if !s.IsAuthenticated(ctx) {
		return false
	}
	p, ok := s.Claims(ctx)
	if !ok {
		return true
	}
	return p.IsExpired(s.now())
}

// AccessLevel returns the role claimed by the token, or LevelUnknown.
func (s *Store) AccessLevel(ctx context.Context) token.AccessLevel {
	p, ok := s.Claims(ctx)
	if !ok {
		return token.LevelUnknown
	}
	return p.AccessLevel
}

// RememberMe returns the persistence preference. It lives in the durable
// tier and is independent of token state.
func (s *Store) RememberMe(ctx context.Context) bool {
	v, ok, err := storage.Lookup(ctx, s.durable, storage.KeyRememberMe)
	if err != nil {
		s.logger.Warn("read remember-me failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// ToggleRememberMe flips the preference and returns the new value. An
// existing token stays where it is; the next SetToken lands in the newly
// active tier and removes it from the old one.
func (s *Store) ToggleRememberMe(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := !s.RememberMe(ctx)
	if err := s.durable.Set(ctx, storage.KeyRememberMe, strconv.FormatBool(next)); err != nil {
		return !next, domain.ErrStorage.WithDetails("store remember-me").WithCause(err)
	}
	return next, nil
}

// SetRedirectTarget records where a blocked navigation was headed.
func (s *Store) SetRedirectTarget(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirect = route
}

// RedirectTarget returns the recorded target without consuming it.
func (s *Store) RedirectTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirect
}

// TakeRedirectTarget returns the recorded target and resets it to the
// default, so it is read once by the login flow.
func (s *Store) TakeRedirectTarget() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.redirect
	s.redirect = DefaultRedirectTarget
	return r
}

// Lifetime returns the current generation ID and its context. A lifetime
// is started on demand, so unauthenticated calls (login) get one too.
func (s *Store) Lifetime() (string, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lifetime == nil {
		s.startLocked()
	}
	return s.generation, s.lifetime
}

// IsCurrent reports whether generation is still the live session.
func (s *Store) IsCurrent(generation string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return generation != "" && generation == s.generation
}

func (s *Store) startLocked() {
	s.generation = uuid.NewString()
	s.lifetime, s.cancel = context.WithCancel(context.Background())
}

func (s *Store) retireLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.generation = ""
	s.lifetime = nil
	s.cancel = nil
}

// Put stores a serialized value (app settings, signed-in user) in the
// active tier and removes it from the other.
func (s *Store) Put(ctx context.Context, key, value string) error {
	key = storage.Key(key)
	active, other := s.tiers(ctx)
	if err := active.Set(ctx, key, value); err != nil {
		return domain.ErrStorage.WithDetails(key).WithCause(err)
	}
	if err := other.Delete(ctx, key); err != nil {
		return domain.ErrStorage.WithDetails(key).WithCause(err)
	}
	return nil
}

// Value reads a serialized value, active tier first.
func (s *Store) Value(ctx context.Context, key string) (string, bool) {
	key = storage.Key(key)
	active, other := s.tiers(ctx)
	for _, t := range []storage.Tier{active, other} {
		v, ok, err := storage.Lookup(ctx, t, key)
		if err != nil {
			s.logger.Warn("read value failed", "key", key, "error", err)
			continue
		}
		if ok {
			return v, true
		}
	}
	return "", false
}

// Remove deletes a serialized value from both tiers.
func (s *Store) Remove(ctx context.Context, key string) error {
	key = storage.Key(key)
	if err := errors.Join(s.durable.Delete(ctx, key), s.ephemeral.Delete(ctx, key)); err != nil {
		return domain.ErrStorage.WithDetails(key).WithCause(err)
	}
	return nil
}
