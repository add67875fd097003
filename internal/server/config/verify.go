package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
)

// Verify validates the configuration. A missing env file is not an error:
// the service answers {} until it appears.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyEnv(&cfg.Env); err != nil {
		return err
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < 1 {
		return domain.ErrConfig.WithDetails("ratelimit.burst must be at least 1")
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "json", "text", "console":
	default:
		return domain.ErrConfig.WithDetails(fmt.Sprintf("unknown log.format %q", cfg.Log.Format))
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return domain.ErrConfig.WithDetails(fmt.Sprintf("server.http.addr %q: %v", cfg.HTTP.Addr, err))
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return domain.ErrConfig.WithDetails("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return domain.ErrConfig.WithDetails("TLS file").WithCause(err)
		}
	}
	return nil
}

func verifyEnv(cfg *EnvSection) error {
	if cfg.File == "" {
		return domain.ErrConfig.WithDetails("env.file is required")
	}
	if len(cfg.SealedKeys) > 0 && cfg.SecretKey == "" {
		return domain.ErrConfig.WithDetails("env.secret_key is required when env.sealed_keys is set")
	}
	return nil
}
