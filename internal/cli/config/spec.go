package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/internal/storage"
)

// CLIConfig is the configuration for parking-console.
type CLIConfig struct {
	// AppURL is the platform API origin.
	AppURL string `koanf:"app_url" yaml:"app_url"`

	// EnvURL is the env service origin.
	EnvURL string `koanf:"env_url" yaml:"env_url"`

	// Output is the default output format: table, json, yaml.
	Output string `koanf:"output" yaml:"output"`

	// Timeout bounds each API call, e.g. "15s".
	Timeout string `koanf:"timeout" yaml:"timeout"`

	// CAFile is a PEM bundle for platforms behind a private CA.
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty"`

	// SecretKey opens values sealed by the platform (google_api_key,
	// sealed env variables).
	SecretKey string `koanf:"secret_key" yaml:"secret_key,omitempty"`

	// StateDir holds the durable tier.
	StateDir string `koanf:"state_dir" yaml:"state_dir"`

	Storage StorageConfig `koanf:"storage" yaml:"storage"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
}

// StorageConfig selects the durable tier backend.
type StorageConfig struct {
	Backend       string `koanf:"backend" yaml:"backend"`
	RedisAddr     string `koanf:"redis_addr" yaml:"redis_addr,omitempty"`
	RedisPassword string `koanf:"redis_password" yaml:"redis_password,omitempty"`
	RedisDB       int    `koanf:"redis_db" yaml:"redis_db,omitempty"`
	// Secret seals every stored value.
	Secret string `koanf:"secret" yaml:"secret,omitempty"`
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Default returns the default console configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		AppURL:   "http://localhost:8080",
		EnvURL:   "http://localhost:9090",
		Output:   "table",
		Timeout:  "15s",
		StateDir: DefaultStateDir(),
		Storage: StorageConfig{
			Backend: storage.BackendBadger,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// TimeoutDuration parses Timeout, falling back to 15s.
func (c *CLIConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// StorageOptions converts the storage section for storage.Open.
func (c *CLIConfig) StorageOptions() storage.Config {
	cfg := storage.DefaultConfig(c.StateDir)
	if c.Storage.Backend != "" {
		cfg.Backend = c.Storage.Backend
	}
	cfg.RedisAddr = c.Storage.RedisAddr
	cfg.RedisPassword = c.Storage.RedisPassword
	cfg.RedisDB = c.Storage.RedisDB
	cfg.Secret = c.Storage.Secret
	return cfg
}

// Verify validates the configuration.
func (c *CLIConfig) Verify() error {
	if err := verifyURL("app_url", c.AppURL, true); err != nil {
		return err
	}
	if err := verifyURL("env_url", c.EnvURL, false); err != nil {
		return err
	}
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return domain.ErrConfig.WithDetails(fmt.Sprintf("output must be table, json or yaml, got %q", c.Output))
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return domain.ErrConfig.WithDetails(fmt.Sprintf("timeout %q is not a positive duration", c.Timeout))
	}
	switch c.Storage.Backend {
	case "", storage.BackendBadger:
		if c.StateDir == "" {
			return domain.ErrConfig.WithDetails("state_dir is required for the badger backend")
		}
	case storage.BackendRedis:
		if c.Storage.RedisAddr == "" {
			return domain.ErrConfig.WithDetails("storage.redis_addr is required for the redis backend")
		}
	default:
		return domain.ErrConfig.WithDetails(fmt.Sprintf("unknown storage backend %q", c.Storage.Backend))
	}
	return nil
}

func verifyURL(name, raw string, required bool) error {
	if raw == "" {
		if required {
			return domain.ErrConfig.WithDetails(name + " is required")
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.ErrConfig.WithDetails(fmt.Sprintf("%s %q is not an http(s) URL", name, raw))
	}
	return nil
}

// Keys settable with Set, in display order.
var Keys = []string{
	"app_url", "env_url", "output", "timeout", "ca_file", "secret_key",
	"state_dir", "storage.backend", "storage.redis_addr", "storage.redis_password",
	"storage.secret", "log.level", "log.format",
}

// Set assigns one dotted key from a string.
func (c *CLIConfig) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "app_url":
		c.AppURL = value
	case "env_url":
		c.EnvURL = value
	case "output":
		c.Output = value
	case "timeout":
		c.Timeout = value
	case "ca_file":
		c.CAFile = value
	case "secret_key":
		c.SecretKey = value
	case "state_dir":
		c.StateDir = value
	case "storage.backend":
		c.Storage.Backend = value
	case "storage.redis_addr":
		c.Storage.RedisAddr = value
	case "storage.redis_password":
		c.Storage.RedisPassword = value
	case "storage.secret":
		c.Storage.Secret = value
	case "log.level":
		c.Log.Level = value
	case "log.format":
		c.Log.Format = value
	default:
		return domain.ErrInvalidArgument.WithDetails("unknown config key " + key)
	}
	return nil
}
