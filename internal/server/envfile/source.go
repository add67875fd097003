package envfile

import (
	"fmt"
	"maps"
	"sync"

	"github.com/joho/godotenv"

	"github.com/foxcodenine/iot-parking-console/internal/infra/confloader"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/metric"
	"github.com/foxcodenine/iot-parking-console/pkg/crypto/adaptive"
)

// Source serves the variables of one dotenv file.
type Source struct {
	path    string
	sealed  map[string]struct{}
	cipher  adaptive.Cipher
	logger  logger.Logger
	metrics *metric.Registry
	watcher *confloader.Watcher

	mu     sync.Mutex
	cached map[string]string
}

// Option configures a Source.
type Option func(*Source)

// WithSealedKeys encrypts the named keys with c.
func WithSealedKeys(c adaptive.Cipher, keys ...string) Option {
	return func(s *Source) {
		s.cipher = c
		for _, k := range keys {
			s.sealed[k] = struct{}{}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// WithMetrics records reloads.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Source) { s.metrics = m }
}

// New creates a Source for path.
func New(path string, opts ...Option) (*Source, error) {
	s := &Source{
		path:   path,
		sealed: make(map[string]struct{}),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.sealed) > 0 && s.cipher == nil {
		return nil, fmt.Errorf("envfile: sealed keys without a cipher")
	}
	return s, nil
}

// Watch caches the parsed file until it changes on disk. Call Close to
// stop watching.
func (s *Source) Watch() error {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(s.logger)))
	if err != nil {
		return fmt.Errorf("envfile: watch: %w", err)
	}
	if err := w.Watch(s.path); err != nil {
		w.Stop()
		return fmt.Errorf("envfile: watch %s: %w", s.path, err)
	}
	w.OnChange(func(string) {
		s.logger.Info("env file changed", "path", s.path)
		s.Invalidate()
	})
	w.StartAsync()

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
	return nil
}

// Invalidate drops the cached variables.
func (s *Source) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
}

// Close stops watching.
func (s *Source) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Stop()
}

// Vars returns the published variables. A missing or malformed file yields
// an empty map along with the error, so callers can still answer.
func (s *Source) Vars() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return maps.Clone(s.cached), nil
	}

	vars, err := s.read()
	s.metrics.ObserveEnvReload(len(vars), err)
	if err != nil {
		return map[string]string{}, err
	}
	if s.watcher != nil {
		s.cached = vars
		return maps.Clone(vars), nil
	}
	return vars, nil
}

func (s *Source) read() (map[string]string, error) {
	vars, err := godotenv.Read(s.path)
	if err != nil {
		return nil, fmt.Errorf("envfile: read %s: %w", s.path, err)
	}
	for k, v := range vars {
		if _, ok := s.sealed[k]; !ok || v == "" {
			continue
		}
		sealed, err := adaptive.Seal(s.cipher, []byte(v))
		if err != nil {
			return nil, fmt.Errorf("envfile: seal %s: %w", k, err)
		}
		vars[k] = sealed
	}
	return vars, nil
}
