package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/foxcodenine/iot-parking-console/internal/infra/confloader"
)

const dirName = ".parking-console"

func home() string {
	dir, err := os.UserHomeDir()
	if err != nil || dir == "" {
		return "."
	}
	return dir
}

// DefaultConfigPath returns the default console config file path.
func DefaultConfigPath() string {
	return filepath.Join(home(), dirName, "console.yaml")
}

// DefaultStateDir returns the default durable tier directory.
func DefaultStateDir() string {
	return filepath.Join(home(), dirName, "state")
}

// Load layers defaults, the config file (optional), PARKING_CONSOLE_*
// variables and flags. flags holds dotted keys; nil values are skipped.
func Load(path string, flags map[string]any) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	loader := confloader.NewLoader(
		confloader.WithOptionalConfigFile(path),
		confloader.WithEnvPrefix(confloader.ConsoleEnvPrefix),
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

// Save writes cfg as YAML, readable only by the owner.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
