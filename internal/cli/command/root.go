package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/foxcodenine/iot-parking-console/internal/cli/app"
	"github.com/foxcodenine/iot-parking-console/internal/cli/config"
	"github.com/foxcodenine/iot-parking-console/internal/cli/output"
	"github.com/foxcodenine/iot-parking-console/internal/infra/buildinfo"
)

const (
	metaConsole = "console"
	metaShared  = "shared"
	metaConfig  = "config"
)

// flagKeys maps global flags onto config keys.
var flagKeys = map[string]string{
	"app-url":   "app_url",
	"env-url":   "env_url",
	"output":    "output",
	"timeout":   "timeout",
	"ca-file":   "ca_file",
	"state-dir": "state_dir",
	"storage":   "storage.backend",
	"log-level": "log.level",
}

// App creates the CLI application.
func App() *cli.App {
	return newApp(nil)
}

// newApp builds the command tree. A non-nil shared console is reused and
// left open, which is how REPL lines run.
func newApp(shared *app.Console) *cli.App {
	a := &cli.App{
		Name:                 "parking-console",
		Usage:                "Administrative console for the parking sensor platform",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             commands(),
		EnableBashCompletion: true,
		Metadata:             map[string]any{},
		After:                closeConsole,
	}
	if shared != nil {
		a.Metadata[metaConsole] = shared
		a.Metadata[metaConfig] = shared.Config
		a.Metadata[metaShared] = true
		a.ExitErrHandler = func(*cli.Context, error) {}
	}
	return a
}

func commands() []*cli.Command {
	return []*cli.Command{
		LoginCommand(),
		LogoutCommand(),
		WhoamiCommand(),
		RememberMeCommand(),
		DeviceCommand(),
		UserCommand(),
		LogsCommand(),
		MapCommand(),
		SettingsCommand(),
		EnvCommand(),
		ConfigCommand(),
		AboutCommand(),
		REPLCommand(),
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file",
			Value:   config.DefaultConfigPath(),
			EnvVars: []string{"PARKING_CONSOLE_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "app-url",
			Usage: "Platform API origin",
		},
		&cli.StringFlag{
			Name:  "env-url",
			Usage: "Env service origin",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:  "no-headers",
			Usage: "Omit table headers",
		},
		&cli.StringFlag{
			Name:  "timeout",
			Usage: "Per-request timeout, e.g. 15s",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "PEM bundle trusted for the platform",
		},
		&cli.StringFlag{
			Name:  "state-dir",
			Usage: "Directory of the durable session tier",
		},
		&cli.StringFlag{
			Name:  "storage",
			Usage: "Durable tier backend: badger, redis",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Diagnostics level: debug, info, warn, error",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug diagnostics",
		},
	}
}

// loadConfig loads the configuration once per run.
func loadConfig(c *cli.Context) (*config.CLIConfig, error) {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg, nil
	}

	flags := make(map[string]any)
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			flags[key] = c.String(flag)
		}
	}
	if c.Bool("verbose") {
		flags["log.level"] = "debug"
	}

	cfg, err := config.Load(c.String("config"), flags)
	if err != nil {
		return nil, err
	}
	c.App.Metadata[metaConfig] = cfg
	return cfg, nil
}

// consoleFrom returns the console, building it on first use.
func consoleFrom(c *cli.Context) (*app.Console, error) {
	if con, ok := c.App.Metadata[metaConsole].(*app.Console); ok {
		return con, nil
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	con, err := app.New(c.Context, cfg, app.WithFlashOutput(c.App.ErrWriter))
	if err != nil {
		return nil, err
	}
	c.App.Metadata[metaConsole] = con
	return con, nil
}

func closeConsole(c *cli.Context) error {
	if shared, _ := c.App.Metadata[metaShared].(bool); shared {
		return nil
	}
	con, ok := c.App.Metadata[metaConsole].(*app.Console)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, metaConsole)
	return con.Close()
}

// visit runs fn behind the guard of route.
func visit(c *cli.Context, route string, fn func(ctx context.Context, con *app.Console) error) error {
	con, err := consoleFrom(c)
	if err != nil {
		return err
	}
	return con.Visit(c.Context, route, func(ctx context.Context) error {
		return fn(ctx, con)
	})
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	format := c.String("output")
	if format == "" {
		if cfg, err := loadConfig(c); err == nil {
			format = cfg.Output
		}
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	var formatter output.Formatter
	if f == output.FormatTable {
		formatter = &output.TableFormatter{Wide: c.Bool("wide"), NoHeaders: c.Bool("no-headers")}
	} else {
		formatter = output.NewFormatter(f, c.Bool("wide"))
	}
	return formatter.Format(stdout(c), data)
}

// fetching shows a spinner on an interactive stderr while fn runs.
func fetching(c *cli.Context, message string, fn func() error) error {
	var w io.Writer
	if f, ok := c.App.ErrWriter.(*os.File); ok && output.Interactive(f) {
		w = f
	}
	return output.Run(w, message, fn)
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func printf(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(stdout(c), format, args...)
}
