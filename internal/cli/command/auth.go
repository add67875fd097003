package command

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/foxcodenine/iot-parking-console/internal/cli/router"
	"github.com/foxcodenine/iot-parking-console/pkg/token"
)

// LoginCommand signs in.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Sign in to the platform",
		ArgsUsage: "[EMAIL] [PASSWORD]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account e-mail",
				EnvVars: []string{"PARKING_CONSOLE_EMAIL"},
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password (prompted when omitted)",
				EnvVars: []string{"PARKING_CONSOLE_PASSWORD"},
			},
			&cli.BoolFlag{
				Name:    "remember",
				Aliases: []string{"r"},
				Usage:   "Keep the session after the console exits",
			},
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	con, err := consoleFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	if err := con.Visit(ctx, router.RouteLogin, nil); err != nil {
		return err
	}

	email := c.String("email")
	if email == "" {
		email = c.Args().Get(0)
	}
	if email == "" {
		if email, err = prompt(c, "E-mail: ", false); err != nil {
			return err
		}
	}
	password := c.String("password")
	if password == "" {
		password = c.Args().Get(1)
	}
	if password == "" {
		if password, err = prompt(c, "Password: ", true); err != nil {
			return err
		}
	}

	if c.IsSet("remember") && c.Bool("remember") != con.Session.RememberMe(ctx) {
		if _, err := con.Session.ToggleRememberMe(ctx); err != nil {
			return err
		}
	}

	var next string
	err = fetching(c, "Signing in", func() error {
		var err error
		next, err = con.Auth.Login(ctx, email, password)
		return err
	})
	if err != nil {
		return err
	}

	printf(c, "Signed in as %s (%s)\n", email, con.Session.AccessLevel(ctx))
	if shared, _ := c.App.Metadata[metaShared].(bool); shared {
		if err := con.Visit(ctx, next, nil); err != nil {
			return err
		}
		printf(c, "→ %s\n", next)
	} else if !con.Session.RememberMe(ctx) {
		fmt.Fprintln(c.App.ErrWriter, "! Session ends with this command; use --remember or the repl to keep it.")
	}
	return nil
}

// prompt reads one line from stdin, without echo for secrets on a
// terminal.
func prompt(c *cli.Context, label string, secret bool) (string, error) {
	fmt.Fprint(c.App.ErrWriter, label)
	if f, ok := c.App.Reader.(*os.File); ok && secret && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.App.ErrWriter)
		return string(b), err
	}
	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// LogoutCommand signs out.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Sign out and forget the session",
		Action: func(c *cli.Context) error {
			con, err := consoleFrom(c)
			if err != nil {
				return err
			}
			if !con.Session.IsAuthenticated(c.Context) {
				printf(c, "Not signed in.\n")
				return nil
			}
			if err := con.Visit(c.Context, router.RouteLogout, nil); err != nil {
				return err
			}
			printf(c, "Signed out.\n")
			return nil
		},
	}
}

type whoami struct {
	Authenticated bool      `json:"authenticated"`
	Email         string    `json:"email,omitempty"`
	UserID        int64     `json:"user_id,omitempty"`
	AccessLevel   string    `json:"access_level,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	Expired       bool      `json:"expired"`
	RememberMe    bool      `json:"remember_me"`
	AppURL        string    `json:"app_url"`
}

// WhoamiCommand shows the local session.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the current session",
		Action: func(c *cli.Context) error {
			con, err := consoleFrom(c)
			if err != nil {
				return err
			}
			ctx := c.Context
			w := whoami{
				Authenticated: con.Session.IsAuthenticated(ctx),
				Expired:       con.Session.IsExpired(ctx),
				RememberMe:    con.Session.RememberMe(ctx),
				AppURL:        con.App.AppURL(),
			}
			if p, ok := con.Session.Claims(ctx); ok {
				w.Email = p.Email
				w.UserID = p.UserID
				if p.AccessLevel != token.LevelUnknown {
					w.AccessLevel = p.AccessLevel.String()
				}
				if p.ExpiresAt != nil {
					w.ExpiresAt = *p.ExpiresAt
				}
			}
			return render(c, w)
		},
	}
}

// RememberMeCommand shows or sets where the next session is kept.
func RememberMeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remember-me",
		Usage:     "Show or set whether sessions survive the console",
		ArgsUsage: "[on|off]",
		Action: func(c *cli.Context) error {
			con, err := consoleFrom(c)
			if err != nil {
				return err
			}
			ctx := c.Context
			current := con.Session.RememberMe(ctx)

			if arg := c.Args().First(); arg != "" {
				var want bool
				switch strings.ToLower(arg) {
				case "on", "true", "yes", "1":
					want = true
				case "off", "false", "no", "0":
				default:
					return fmt.Errorf("remember-me: want on or off, got %q", arg)
				}
				if want != current {
					if current, err = con.Session.ToggleRememberMe(ctx); err != nil {
						return err
					}
				}
			}

			state := "off"
			if current {
				state = "on"
			}
			printf(c, "remember-me: %s\n", state)
			return nil
		},
	}
}
