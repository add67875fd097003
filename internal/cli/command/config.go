package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/foxcodenine/iot-parking-console/internal/cli/config"
)

// ConfigCommand returns the config subcommand group. None of these touch
// the session, so they work before the first sign-in.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Local configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: func(c *cli.Context) error { printf(c, "%s\n", c.String("config")); return nil },
			},
			{
				Name:      "set",
				Usage:     "Set one key in the config file",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
			},
			{
				Name:   "keys",
				Usage:  "List settable keys",
				Action: func(c *cli.Context) error { return render(c, config.Keys) },
			},
			{
				Name:   "validate",
				Usage:  "Validate the effective configuration",
				Action: configValidate,
			},
		},
	}
}

// redacted hides secrets from displayed configuration.
func redacted(cfg *config.CLIConfig) config.CLIConfig {
	shown := *cfg
	shown.SecretKey = mask(shown.SecretKey)
	shown.Storage.Secret = mask(shown.Storage.Secret)
	shown.Storage.RedisPassword = mask(shown.Storage.RedisPassword)
	return shown
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return render(c, redacted(cfg))
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: config set KEY VALUE")
	}
	path := c.String("config")

	// Start from the file alone so flags and env vars are not persisted.
	cfg, err := config.Load(path, nil)
	if err != nil {
		return err
	}
	if err := cfg.Set(c.Args().Get(0), c.Args().Get(1)); err != nil {
		return err
	}
	if err := cfg.Verify(); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	printf(c, "✓ %s saved to %s\n", c.Args().Get(0), path)
	return nil
}

func configValidate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Verify(); err != nil {
		return err
	}
	printf(c, "✓ Configuration is valid\n")
	return nil
}
