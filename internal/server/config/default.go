package config

// Default configuration values.
const (
	DefaultHTTPAddr = ":9090"
	DefaultEnvFile  = ".env"

	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
			},
		},
		Env: EnvSection{
			File:  DefaultEnvFile,
			Watch: true,
		},
		RateLimit: RateLimitSection{
			RPS:   DefaultRateLimitRPS,
			Burst: DefaultRateLimitBurst,
		},
		Metrics: MetricsSection{
			Enabled: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
