package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("storage tier closed")
)

// KeyPrefix namespaces every key the console writes.
const KeyPrefix = "parking-console:"

// Well-known keys held by both tiers.
const (
	KeyToken       = KeyPrefix + "token"
	KeyRememberMe  = KeyPrefix + "rememberMe"
	KeyAppSettings = KeyPrefix + "appSettings"
	KeyAuthUser    = KeyPrefix + "authUser"
)

// Key returns name inside the console namespace. Names already carrying
// the prefix are returned unchanged.
func Key(name string) string {
	if strings.HasPrefix(name, KeyPrefix) {
		return name
	}
	return KeyPrefix + name
}

// Tier is a string key-value store.
//
// Implementations must be safe for concurrent use. Get returns
// ErrKeyNotFound for missing keys; Delete of a missing key is not an error.
type Tier interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Lookup is Get with ErrKeyNotFound folded into ok=false.
func Lookup(ctx context.Context, t Tier, key string) (value string, ok bool, err error) {
	v, err := t.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Config selects and configures the durable tier.
type Config struct {
	// Backend is "badger" (default) or "redis".
	Backend string

	// Dir is the Badger state directory.
	Dir string

	// RedisAddr is host:port of the Redis server.
	RedisAddr string

	// RedisPassword and RedisDB select the Redis database.
	RedisPassword string
	RedisDB       int

	// Secret, when set, seals every value with an authenticated cipher.
	Secret string

	Badger BadgerConfig

	// Metrics receives the Badger size and GC gauges when set.
	Metrics prometheus.Registerer
}

// BadgerConfig contains Badger tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic value log GC runs.
	// Default: 10m
	GCInterval string

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 8MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 16MB
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	// Default: true
	SyncWrites bool
}

// DefaultConfig returns the default durable tier configuration.
func DefaultConfig(dir string) Config {
	return Config{
		Backend: BackendBadger,
		Dir:     dir,
		Badger:  DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns Badger settings sized for a handful of keys.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        8 << 20,
		ValueLogFileSize: 16 << 20,
		SyncWrites:       true,
	}
}
