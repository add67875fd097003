package store

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/pkg/token"
)

// UserStore manages platform accounts.
type UserStore struct {
	api  API
	dash *Dashboard

	mu    sync.RWMutex
	users []domain.User
}

// NewUserStore creates a user store.
func NewUserStore(api API, dash *Dashboard) *UserStore {
	return &UserStore{api: api, dash: dash}
}

// Fetch replaces the list with the backend's.
func (s *UserStore) Fetch(ctx context.Context) ([]domain.User, error) {
	var resp struct {
		Users []domain.User `json:"users"`
	}
	err := track(s.dash, func() error {
		return s.api.Get(ctx, "/api/user", &resp)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.users = resp.Users
	s.mu.Unlock()
	return s.List(), nil
}

// Create adds an account.
func (s *UserStore) Create(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	if strings.TrimSpace(u.Email) == "" || u.Password == "" {
		return nil, domain.ErrInvalidArgument.WithDetails("email and password are required")
	}
	if lvl := token.AccessLevel(u.AccessLevel); lvl < token.LevelRoot || lvl > token.LevelViewer {
		return nil, domain.ErrInvalidArgument.WithDetails("access level must be 0-3")
	}

	var resp struct {
		User *domain.User `json:"user"`
	}
	err := track(s.dash, func() error {
		return s.api.Post(ctx, "/api/user", u, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.User != nil {
		s.mu.Lock()
		s.users = append(s.users, *resp.User)
		s.mu.Unlock()
	}
	return resp.User, nil
}

// Update changes fields of an account (email, password, access_level,
// enabled).
func (s *UserStore) Update(ctx context.Context, id int64, fields map[string]any) (*domain.User, error) {
	var resp struct {
		User *domain.User `json:"user"`
	}
	err := track(s.dash, func() error {
		return s.api.Put(ctx, "/api/user/"+strconv.FormatInt(id, 10), fields, &resp)
	})
	if err != nil {
		return nil, err
	}
	if resp.User != nil {
		s.mu.Lock()
		if i := slices.IndexFunc(s.users, func(u domain.User) bool { return u.ID == id }); i >= 0 {
			s.users[i] = *resp.User
		}
		s.mu.Unlock()
	}
	return resp.User, nil
}

// Delete removes an account.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	err := track(s.dash, func() error {
		return s.api.Delete(ctx, "/api/user/"+strconv.FormatInt(id, 10), nil)
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.users = slices.DeleteFunc(s.users, func(u domain.User) bool { return u.ID == id })
	s.mu.Unlock()
	return nil
}

// List returns the cached accounts ordered by ID.
func (s *UserStore) List() []domain.User {
	s.mu.RLock()
	out := slices.Clone(s.users)
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b domain.User) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Reset drops the cached accounts.
func (s *UserStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
}
