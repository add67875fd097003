package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked, for
// logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Env.SealedKeys = append([]string(nil), cfg.Env.SealedKeys...)

	if sanitized.Env.SecretKey != "" {
		sanitized.Env.SecretKey = maskSecret(sanitized.Env.SecretKey)
	}

	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
