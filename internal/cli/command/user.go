package command

import (
	"context"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/foxcodenine/iot-parking-console/internal/cli/app"
	"github.com/foxcodenine/iot-parking-console/internal/cli/router"
	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
	"github.com/foxcodenine/iot-parking-console/pkg/token"
)

// UserCommand returns the user subcommand group.
func UserCommand() *cli.Command {
	return &cli.Command{
		Name:    "user",
		Aliases: []string{"users"},
		Usage:   "Manage platform accounts",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List accounts",
				Action:  userList,
			},
			{
				Name:  "create",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "E-mail", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prompted when omitted)"},
					&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "Access level: root, admin, editor, viewer or 0-3", Value: "viewer"},
				},
				Action: userCreate,
			},
			{
				Name:      "update",
				Usage:     "Change account fields (email, password, access_level, enabled)",
				ArgsUsage: "USER_ID KEY=VALUE...",
				Action:    userUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete an account",
				ArgsUsage: "USER_ID",
				Action:    userDelete,
			},
		},
	}
}

// parseLevel accepts a level name or number.
func parseLevel(s string) (token.AccessLevel, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for l := token.LevelRoot; l <= token.LevelViewer; l++ {
		if s == strings.ToLower(l.String()) || s == strconv.Itoa(int(l)) {
			return l, nil
		}
	}
	return token.LevelUnknown, domain.ErrInvalidArgument.WithDetails("unknown access level " + s)
}

func userID(c *cli.Context) (int64, error) {
	raw, err := requireArg(c, "USER_ID")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidArgument.WithDetails("USER_ID must be a positive number")
	}
	return id, nil
}

func userList(c *cli.Context) error {
	return visit(c, router.RouteUsers, func(ctx context.Context, con *app.Console) error {
		err := fetching(c, "Fetching users", func() error {
			_, err := con.Users.Fetch(ctx)
			return err
		})
		if err != nil {
			return err
		}
		return render(c, usersView(con.Users.List()))
	})
}

func userCreate(c *cli.Context) error {
	level, err := parseLevel(c.String("level"))
	if err != nil {
		return err
	}
	return visit(c, router.RouteUsers, func(ctx context.Context, con *app.Console) error {
		password := c.String("password")
		if password == "" {
			if password, err = prompt(c, "Password: ", true); err != nil {
				return err
			}
		}
		u, err := con.Users.Create(ctx, domain.NewUser{
			Email:       c.String("email"),
			Password:    password,
			AccessLevel: int(level),
		})
		if err != nil {
			return err
		}
		if u != nil {
			printf(c, "User %d created.\n", u.ID)
		} else {
			printf(c, "User created.\n")
		}
		return nil
	})
}

func userUpdate(c *cli.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	fields, err := parseFields(c.Args().Tail())
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return domain.ErrInvalidArgument.WithDetails("nothing to update")
	}
	if raw, ok := fields["access_level"]; ok {
		s, _ := raw.(string)
		if f, isNum := raw.(float64); isNum {
			s = strconv.Itoa(int(f))
		}
		level, err := parseLevel(s)
		if err != nil {
			return err
		}
		fields["access_level"] = int(level)
	}
	return visit(c, router.RouteUsers, func(ctx context.Context, con *app.Console) error {
		if _, err := con.Users.Update(ctx, id, fields); err != nil {
			return err
		}
		printf(c, "User %d updated.\n", id)
		return nil
	})
}

func userDelete(c *cli.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	return visit(c, router.RouteUsers, func(ctx context.Context, con *app.Console) error {
		if err := con.Users.Delete(ctx, id); err != nil {
			return err
		}
		printf(c, "User %d deleted.\n", id)
		return nil
	})
}
