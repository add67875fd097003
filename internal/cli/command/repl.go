package command

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/foxcodenine/iot-parking-console/internal/cli/app"
	"github.com/foxcodenine/iot-parking-console/internal/cli/repl"
	"github.com/foxcodenine/iot-parking-console/internal/cli/router"
)

// REPLCommand starts interactive mode.
func REPLCommand() *cli.Command {
	return &cli.Command{
		Name:    "repl",
		Aliases: []string{"shell"},
		Usage:   "Start interactive mode",
		Action: func(c *cli.Context) error {
			if shared, _ := c.App.Metadata[metaShared].(bool); shared {
				return fmt.Errorf("already in interactive mode")
			}
			con, err := consoleFrom(c)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.App.ErrWriter, "parking-console interactive mode. Type a route or command, `help` or `exit`.")
			r := repl.New(lineExecutor(c, con),
				repl.WithIO(c.App.Reader, c.App.Writer),
				repl.WithPrompt(promptFor(c.Context, con)),
				repl.WithCompleter(repl.NewCompleter(vocabulary(commands())...)),
				repl.WithHistory(repl.NewHistory(filepath.Join(filepath.Dir(c.String("config")), "history"))),
				repl.WithRedactor(redactArgs),
			)
			return r.Run(c.Context)
		},
	}
}

// lineExecutor runs a command line against the shared console. A bare
// route name is a plain navigation.
func lineExecutor(c *cli.Context, con *app.Console) repl.Executor {
	byName := commandsByName(commands())
	return func(ctx context.Context, args []string) error {
		if route, ok := router.Lookup(args[0]); ok && len(args) == 1 {
			if cmd := byName[args[0]]; cmd == nil || cmd.Action == nil {
				if err := con.Visit(ctx, route.Name, nil); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "→ %s\n", route.Title)
				return nil
			}
		}

		sub := newApp(con)
		sub.Reader = c.App.Reader
		sub.Writer = c.App.Writer
		sub.ErrWriter = c.App.ErrWriter
		sub.HideVersion = true

		argv := []string{c.App.Name, "--config", c.String("config")}
		return sub.RunContext(ctx, append(argv, args...))
	}
}

func promptFor(ctx context.Context, con *app.Console) func() string {
	return func() string {
		route := con.Router.Route()
		if route == "" {
			route = "-"
		}
		user := "guest"
		if p, ok := con.Session.Claims(ctx); ok && p.Email != "" {
			user = p.Email
		}
		return fmt.Sprintf("%s@parking:%s> ", user, route)
	}
}

func commandsByName(cmds []*cli.Command) map[string]*cli.Command {
	byName := make(map[string]*cli.Command)
	for _, cmd := range cmds {
		for _, n := range cmd.Names() {
			byName[n] = cmd
		}
	}
	return byName
}

// vocabulary lists commands, their subcommands and route names.
func vocabulary(cmds []*cli.Command) []string {
	var words []string
	for _, cmd := range cmds {
		words = append(words, cmd.Name)
		for _, sub := range cmd.Subcommands {
			words = append(words, cmd.Name+" "+sub.Name)
		}
	}
	for _, r := range router.Routes {
		words = append(words, r.Name)
	}
	return words
}

// redactArgs masks passwords before a line reaches the history file.
func redactArgs(args []string) []string {
	positional := 0
	for i := 1; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "-") {
			name, _, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
			secret := strings.Contains(name, "password") || name == "p"
			switch {
			case secret && hasValue:
				args[i] = a[:strings.Index(a, "=")+1] + "***"
			case secret && i+1 < len(args):
				i++
				args[i] = "***"
			}
			continue
		}
		positional++
		if args[0] == "login" && positional == 2 {
			args[i] = "***"
		}
	}
	return args
}
