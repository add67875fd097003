package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/foxcodenine/iot-parking-console/internal/cli/config"
	"github.com/foxcodenine/iot-parking-console/internal/cli/connection"
	"github.com/foxcodenine/iot-parking-console/internal/cli/flash"
	"github.com/foxcodenine/iot-parking-console/internal/cli/output"
	"github.com/foxcodenine/iot-parking-console/internal/cli/router"
	"github.com/foxcodenine/iot-parking-console/internal/cli/session"
	"github.com/foxcodenine/iot-parking-console/internal/cli/store"
	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/internal/infra/shutdown"
	"github.com/foxcodenine/iot-parking-console/internal/storage"
	"github.com/foxcodenine/iot-parking-console/internal/storage/memory"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/metric"
	"github.com/foxcodenine/iot-parking-console/pkg/crypto/adaptive"
)

// Console is the composition root of parking-console.
type Console struct {
	Config  *config.CLIConfig
	Logger  logger.Logger
	Metrics *metric.Registry

	Session *session.Store
	Flash   *flash.Store
	Router  *router.Router
	API     *connection.HTTPClient

	Dashboard *store.Dashboard
	App       *store.AppStore
	Auth      *store.AuthStore
	Devices   *store.DeviceStore
	Users     *store.UserStore
	Debug     *store.DebugStore
	Map       *store.MapStore
	Env       *store.EnvStore

	closer      *shutdown.Handler
	unsubscribe func()
}

type options struct {
	durable   storage.Tier
	ephemeral storage.Tier
	logger    logger.Logger
	metrics   *metric.Registry
	flashOut  io.Writer
}

// Option configures a Console.
type Option func(*options)

// WithDurable supplies the durable tier instead of opening the configured
// backend. The caller keeps ownership of it.
func WithDurable(t storage.Tier) Option {
	return func(o *options) { o.durable = t }
}

// WithEphemeral supplies the ephemeral tier.
func WithEphemeral(t storage.Tier) Option {
	return func(o *options) { o.ephemeral = t }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metric registry.
func WithMetrics(m *metric.Registry) Option {
	return func(o *options) { o.metrics = m }
}

// WithFlashOutput sets where flash messages are printed as they arrive.
// A nil writer keeps them silent.
func WithFlashOutput(w io.Writer) Option {
	return func(o *options) { o.flashOut = w }
}

// New builds a Console from cfg.
func New(ctx context.Context, cfg *config.CLIConfig, opts ...Option) (*Console, error) {
	o := options{flashOut: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		l, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
		if err != nil {
			return nil, err
		}
		o.logger = l
	}
	if o.metrics == nil {
		o.metrics = metric.NewRegistry()
	}

	c := &Console{
		Config:  cfg,
		Logger:  o.logger,
		Metrics: o.metrics,
		closer:  shutdown.NewHandler(5 * time.Second),
	}

	if o.durable == nil {
		sc := cfg.StorageOptions()
		sc.Metrics = o.metrics.Registerer()
		tier, err := storage.Open(ctx, sc, logger.Slog(o.logger.With("component", "storage")))
		if err != nil {
			return nil, domain.ErrStorage.WithDetails("open durable tier").WithCause(err)
		}
		c.closer.OnClose(tier.Close)
		o.durable = tier
	}
	if o.ephemeral == nil {
		mem := memory.New()
		c.closer.OnClose(mem.Close)
		o.ephemeral = mem
	}

	var cipher adaptive.Cipher
	if cfg.SecretKey != "" {
		var err error
		if cipher, err = adaptive.FromSecret(cfg.SecretKey, adaptive.CipherAESGCM); err != nil {
			c.Close()
			return nil, domain.ErrConfig.WithDetails("secret_key").WithCause(err)
		}
	}

	c.Session = session.New(o.durable, o.ephemeral, session.WithLogger(o.logger.With("component", "session")))
	c.Flash = flash.New()
	c.Router = router.New(c.Session, c.Flash,
		router.WithLogger(o.logger.With("component", "router")),
		router.WithMetrics(o.metrics),
	)

	api, err := connection.NewHTTPClient(connection.Config{
		BaseURL:    cfg.AppURL,
		Timeout:    cfg.TimeoutDuration(),
		CAFile:     cfg.CAFile,
		LoginRoute: router.RouteLogin,
	}, connection.Deps{
		Session:   c.Session,
		Flash:     c.Flash,
		Navigator: c.Router,
		Logger:    o.logger.With("component", "http"),
		Metrics:   o.metrics,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.API = api

	c.Dashboard = store.NewDashboard()
	appOpts := []store.AppOption{store.WithAppLogger(o.logger.With("component", "app"))}
	if cipher != nil {
		appOpts = append(appOpts, store.WithCipher(cipher))
	}
	c.App = store.NewAppStore(api.BaseURL(), api, c.Dashboard, c.Session, appOpts...)
	c.Auth = store.NewAuthStore(api, c.Session, c.App, c.Dashboard, o.logger.With("component", "auth"),
		router.RouteMap, router.RouteLogin, router.RouteLogout, router.RoutePasswordReset)
	c.Devices = store.NewDeviceStore(api, c.Dashboard)
	c.Users = store.NewUserStore(api, c.Dashboard)
	c.Debug = store.NewDebugStore(api, c.Dashboard)
	c.Map = store.NewMapStore(c.App)
	c.Env = store.NewEnvStore(cfg.EnvURL, cfg.TimeoutDuration(), cipher)

	c.Router.OnReset(c.reset)
	c.Router.Handle(router.RouteLogout, func(ctx context.Context) error {
		err := c.Auth.Logout(ctx)
		c.reset(ctx)
		return err
	})

	if o.flashOut != nil {
		w := o.flashOut
		c.unsubscribe = c.Flash.Subscribe(func(s flash.Snapshot) { output.Flash(w, s) })
	}
	return c, nil
}

// reset drops every piece of session-dependent state.
func (c *Console) reset(ctx context.Context) {
	c.Devices.Reset()
	c.Users.Reset()
	c.Debug.Reset()
	c.Map.Reset()
	c.App.Reset(ctx)
	c.Env.Reset()
	c.Dashboard.SetUserMenu(false)
}

// ErrBlocked is returned by Visit when the guard sent the user elsewhere.
var ErrBlocked = errors.New("navigation blocked")

// Visit navigates to route and, when the guard allows it, runs fn.
func (c *Console) Visit(ctx context.Context, route string, fn func(context.Context) error) error {
	d, err := c.Router.Navigate(ctx, route)
	if err != nil {
		return err
	}
	switch d.State {
	case router.Allowed:
		if fn == nil {
			return nil
		}
		return fn(ctx)
	case router.BlockedExpired:
		return fmt.Errorf("%w: %w", ErrBlocked, domain.ErrSessionExpired.WithDetails("sign in again with `login`"))
	default:
		return fmt.Errorf("%w: %w", ErrBlocked, domain.ErrNotAuthenticated.WithDetails("sign in with `login`"))
	}
}

// Close releases the storage tiers.
func (c *Console) Close() error {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	return c.closer.Shutdown()
}
