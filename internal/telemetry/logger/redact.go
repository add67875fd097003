package logger

import (
	"log/slog"
	"strings"
)

// jwtPrefix is how every base64url-encoded JSON header begins.
const jwtPrefix = "eyJ"

// bearerPrefix is the Authorization scheme prefix.
const bearerPrefix = "Bearer "

var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"authorization",
	"bearer",
	"api_key",
	"apikey",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks token-shaped values anywhere and fully redacts
// values whose key looks sensitive.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if IsSensitiveValue(strVal) {
			return slog.String(a.Key, RedactString(strVal))
		}
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskValue keeps prefix, the first and last three characters of the body.
func maskValue(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) <= 6 {
		return prefix + "***"
	}
	return prefix + body[:3] + "..." + body[len(body)-3:]
}

// RedactString masks bearer headers and JWT-shaped values. Other values
// are returned unchanged.
func RedactString(value string) string {
	if strings.HasPrefix(value, bearerPrefix) {
		return bearerPrefix + RedactString(value[len(bearerPrefix):])
	}
	if isJWT(value) {
		return maskValue(value, jwtPrefix)
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value looks like a bearer credential.
func IsSensitiveValue(value string) bool {
	return strings.HasPrefix(value, bearerPrefix) || isJWT(value)
}

func isJWT(value string) bool {
	return strings.HasPrefix(value, jwtPrefix) && strings.Count(value, ".") == 2
}
