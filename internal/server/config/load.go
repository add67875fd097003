package config

import (
	"fmt"

	"github.com/foxcodenine/iot-parking-console/internal/infra/confloader"
)

// Load layers defaults, the config file, PARKING_ENVD_* variables and
// flags. An empty path skips the file; a named file must exist.
func Load(path string, flags map[string]any) (*ServerConfig, error) {
	cfg := Default()
	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithEnvPrefix(confloader.ServerEnvPrefix),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if len(flags) > 0 {
		if err := loader.LoadMap(flags); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("apply flags: %w", err)
		}
	}
	return cfg, nil
}
