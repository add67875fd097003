package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/foxcodenine/iot-parking-console/pkg/crypto/adaptive"
)

// Open builds the durable tier described by cfg, sealed when cfg.Secret is
// set.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Tier, error) {
	var (
		tier Tier
		err  error
	)

	switch cfg.Backend {
	case "", BackendBadger:
		var b *BadgerTier
		if b, err = OpenBadger(cfg, logger); err == nil {
			if cfg.Metrics != nil {
				b.RegisterMetrics(cfg.Metrics)
			}
			tier = b
		}
	case BackendRedis:
		tier, err = OpenRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Secret == "" {
		return tier, nil
	}

	c, err := adaptive.FromSecret(cfg.Secret, adaptive.CipherChaCha20)
	if err != nil {
		tier.Close()
		return nil, fmt.Errorf("storage: secret: %w", err)
	}
	return NewSealed(tier, c), nil
}
