package config

// ServerConfig is the root configuration for parking-envd.
type ServerConfig struct {
	Server    ServerSection    `koanf:"server" yaml:"server"`
	Env       EnvSection       `koanf:"env" yaml:"env"`
	RateLimit RateLimitSection `koanf:"ratelimit" yaml:"ratelimit"`
	Metrics   MetricsSection   `koanf:"metrics" yaml:"metrics"`
	Log       LogSection       `koanf:"log" yaml:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http" yaml:"http"`
}

// HTTPConfig configures the HTTP server. TLS is served when both files
// are set.
type HTTPConfig struct {
	Addr        string `koanf:"addr" yaml:"addr"`
	TLSCertFile string `koanf:"tls_cert_file" yaml:"tls_cert_file,omitempty"`
	TLSKeyFile  string `koanf:"tls_key_file" yaml:"tls_key_file,omitempty"`
}

// TLSEnabled reports whether a certificate pair is configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// EnvSection configures the published key=value file.
type EnvSection struct {
	// File is the dotenv file served at /env.
	File string `koanf:"file" yaml:"file"`

	// SealedKeys are published encrypted with SecretKey.
	SealedKeys []string `koanf:"sealed_keys" yaml:"sealed_keys,omitempty"`

	// SecretKey seals SealedKeys. AES key sizes are used as is; anything
	// else is stretched with HKDF.
	SecretKey string `koanf:"secret_key" yaml:"secret_key,omitempty"`

	// Watch re-reads File when it changes on disk instead of on every
	// request.
	Watch bool `koanf:"watch" yaml:"watch"`
}

// RateLimitSection configures the per-client limiter. RPS <= 0 disables it.
type RateLimitSection struct {
	RPS   float64 `koanf:"rps" yaml:"rps"`
	Burst int     `koanf:"burst" yaml:"burst"`
}

// MetricsSection toggles GET /metrics.
type MetricsSection struct {
	Enabled bool `koanf:"enabled" yaml:"enabled"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}
