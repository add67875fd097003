package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/pkg/crypto/adaptive"
)

// EnvStore loads the runtime variables published by the env service. It
// uses its own HTTP client: the env service is a separate origin and must
// never receive the bearer token.
type EnvStore struct {
	baseURL string
	client  *http.Client
	cipher  adaptive.Cipher

	mu  sync.RWMutex
	env map[string]string
}

// NewEnvStore creates an env store for the service at baseURL.
func NewEnvStore(baseURL string, timeout time.Duration, cipher adaptive.Cipher) *EnvStore {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &EnvStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cipher:  cipher,
		env:     map[string]string{},
	}
}

// Load fetches every variable and merges them into the store.
func (s *EnvStore) Load(ctx context.Context) (map[string]string, error) {
	if s.baseURL == "" {
		return nil, domain.ErrConfig.WithDetails("env_url is not set")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/env", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.ErrTransport.WithDetails("GET /env").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &domain.APIError{
			Status:   resp.StatusCode,
			Method:   http.MethodGet,
			Path:     "/env",
			Messages: []string{strings.TrimSpace(string(body))},
		}
	}

	var vars map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&vars); err != nil {
		return nil, domain.ErrDecodeResponse.WithDetails("/env").WithCause(err)
	}

	s.mu.Lock()
	maps.Copy(s.env, vars)
	out := maps.Clone(s.env)
	s.mu.Unlock()
	return out, nil
}

// Env returns a copy of the loaded variables.
func (s *EnvStore) Env() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.env)
}

// Get returns one variable as published.
func (s *EnvStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.env[key]
	return v, ok
}

// Reveal returns a variable the service published sealed.
func (s *EnvStore) Reveal(key string) (string, error) {
	v, ok := s.Get(key)
	if !ok {
		return "", domain.ErrNotFound.WithDetails(key)
	}
	if s.cipher == nil {
		return "", ErrNoSecret
	}
	plain, err := adaptive.Open(s.cipher, v)
	if err != nil {
		return "", domain.ErrDecodeResponse.WithDetails(key).WithCause(err)
	}
	return string(plain), nil
}

// Reset forgets the loaded variables.
func (s *EnvStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env = map[string]string{}
}
