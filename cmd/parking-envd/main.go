package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/foxcodenine/iot-parking-console/internal/infra/buildinfo"
	"github.com/foxcodenine/iot-parking-console/internal/infra/confloader"
	"github.com/foxcodenine/iot-parking-console/internal/infra/shutdown"
	"github.com/foxcodenine/iot-parking-console/internal/infra/tlsroots"
	"github.com/foxcodenine/iot-parking-console/internal/server/config"
	"github.com/foxcodenine/iot-parking-console/internal/server/envfile"
	"github.com/foxcodenine/iot-parking-console/internal/server/httpserver"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/logger"
	"github.com/foxcodenine/iot-parking-console/internal/telemetry/metric"
	"github.com/foxcodenine/iot-parking-console/pkg/crypto/adaptive"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps flags onto config keys.
var flagKeys = map[string]string{
	"addr":      "server.http.addr",
	"env-file":  "env.file",
	"log-level": "log.level",
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "parking-envd",
		Usage:   "Serve a dotenv file as JSON",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"PARKING_ENVD_CONFIG"},
			},
			&cli.StringFlag{Name: "addr", Usage: "Listen address (default :9090)"},
			&cli.StringFlag{Name: "env-file", Usage: "Dotenv file to publish"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, error"},
		},
		Action: func(c *cli.Context) error {
			flags := make(map[string]any)
			for flag, key := range flagKeys {
				if c.IsSet(flag) {
					flags[key] = c.String(flag)
				}
			}
			cfg, err := config.Load(c.String("config"), flags)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.Verify(cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(c.Context, cfg)
		},
	}
}

func run(ctx context.Context, cfg *config.ServerConfig) error {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting parking-envd",
		"version", buildinfo.Version,
		"config", config.Sanitize(cfg))

	reg := metric.NewRegistry()
	src, err := newSource(cfg, log, reg)
	if err != nil {
		return err
	}

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.Env = src
	routerCfg.EnvFile = cfg.Env.File
	routerCfg.Logger = log
	routerCfg.Metrics = reg
	routerCfg.ExposeMetrics = cfg.Metrics.Enabled
	routerCfg.RateLimitRPS = cfg.RateLimit.RPS
	routerCfg.RateLimitBurst = cfg.RateLimit.Burst

	srv := httpserver.New(cfg.Server.HTTP.Addr, httpserver.NewRouter(routerCfg), log)

	shutdownHandler := shutdown.NewHandler(30 * time.Second)
	shutdownHandler.OnClose(src.Close)

	if cfg.Server.HTTP.TLSEnabled() {
		tlsCfg, stop, err := newTLS(cfg.Server.HTTP, log)
		if err != nil {
			src.Close()
			return err
		}
		shutdownHandler.OnClose(stop)
		srv.SetTLSConfig(tlsCfg)
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return srv.Shutdown(ctx)
	})

	go func() {
		if err := srv.ListenAndServe("", ""); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// newTLS serves the configured key pair and reloads it when either file
// changes on disk.
func newTLS(cfg config.HTTPConfig, log logger.Logger) (*tls.Config, func() error, error) {
	reloader, err := tlsroots.NewReloader(cfg.TLSCertFile, cfg.TLSKeyFile, logger.Slog(log))
	if err != nil {
		return nil, nil, err
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(log)))
	if err != nil {
		return nil, nil, fmt.Errorf("certificate watch: %w", err)
	}
	if err := reloader.Watch(w); err != nil {
		w.Stop()
		return nil, nil, fmt.Errorf("certificate watch: %w", err)
	}
	w.StartAsync()

	return reloader.ServerConfig(), w.Stop, nil
}

// newSource builds the env file source. A watch that cannot start is
// logged and the file is read per request instead.
func newSource(cfg *config.ServerConfig, log logger.Logger, reg *metric.Registry) (*envfile.Source, error) {
	opts := []envfile.Option{envfile.WithLogger(log), envfile.WithMetrics(reg)}
	if len(cfg.Env.SealedKeys) > 0 {
		c, err := adaptive.FromSecret(cfg.Env.SecretKey, adaptive.CipherAESGCM)
		if err != nil {
			return nil, fmt.Errorf("env.secret_key: %w", err)
		}
		opts = append(opts, envfile.WithSealedKeys(c, cfg.Env.SealedKeys...))
	}

	src, err := envfile.New(cfg.Env.File, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.Env.Watch {
		if err := src.Watch(); err != nil {
			log.Warn("env file watch disabled", "error", err)
		}
	}
	return src, nil
}
