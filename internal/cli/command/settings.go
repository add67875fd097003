package command

import (
	"context"
	"errors"
	"maps"

	"github.com/urfave/cli/v2"

	"github.com/foxcodenine/iot-parking-console/internal/cli/app"
	"github.com/foxcodenine/iot-parking-console/internal/cli/router"
	"github.com/foxcodenine/iot-parking-console/internal/cli/store"
	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
)

// SettingsCommand returns the app settings subcommand group.
func SettingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change platform settings",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the settings received at sign-in",
				Action: settingsShow,
			},
			{
				Name:      "update",
				Usage:     "Change settings (requires the admin password)",
				ArgsUsage: "KEY=VALUE...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "admin-password",
						Usage: "Admin password (prompted when omitted)",
					},
				},
				Action: settingsUpdate,
			},
			{
				Name:   "google-key",
				Usage:  "Reveal the Google Maps API key",
				Action: settingsGoogleKey,
			},
		},
		Action: settingsShow,
	}
}

func settingsShow(c *cli.Context) error {
	return visit(c, router.RouteSettings, func(ctx context.Context, con *app.Console) error {
		settings, ok := con.App.Settings(ctx)
		if !ok {
			settings = domain.AppSettings{}
		}
		shown := maps.Clone(map[string]string(settings))
		if v, ok := shown[domain.SettingGoogleAPIKey]; ok && v != "" {
			shown[domain.SettingGoogleAPIKey] = "(sealed)"
		}
		return render(c, shown)
	})
}

func settingsUpdate(c *cli.Context) error {
	fields, err := parseStrings(c.Args().Slice())
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return domain.ErrInvalidArgument.WithDetails("nothing to update")
	}
	return visit(c, router.RouteSettings, func(ctx context.Context, con *app.Console) error {
		password := c.String("admin-password")
		if password == "" {
			if password, err = prompt(c, "Admin password: ", true); err != nil {
				return err
			}
		}
		fields["admin_password"] = password
		if err := con.App.UpdateSettings(ctx, fields); err != nil {
			return err
		}
		printf(c, "Settings updated.\n")
		return nil
	})
}

func settingsGoogleKey(c *cli.Context) error {
	return visit(c, router.RouteSettings, func(ctx context.Context, con *app.Console) error {
		key, err := con.App.GoogleAPIKey(ctx)
		if err != nil {
			return err
		}
		printf(c, "%s\n", key)
		return nil
	})
}

type mapView struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Zoom      int      `json:"zoom"`
	Favorites []string `json:"favorites"`
}

// MapCommand shows or moves the map view.
func MapCommand() *cli.Command {
	return &cli.Command{
		Name:  "map",
		Usage: "Show or move the map centre",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "lat", Usage: "Centre latitude"},
			&cli.Float64Flag{Name: "lng", Usage: "Centre longitude"},
			&cli.IntFlag{Name: "zoom", Usage: "Zoom level"},
		},
		Action: func(c *cli.Context) error {
			return visit(c, router.RouteMap, func(ctx context.Context, con *app.Console) error {
				if c.IsSet("lat") || c.IsSet("lng") {
					center := con.Map.Center(ctx)
					if c.IsSet("lat") {
						center.Lat = c.Float64("lat")
					}
					if c.IsSet("lng") {
						center.Lng = c.Float64("lng")
					}
					con.Map.SetCenter(center)
				}
				if c.IsSet("zoom") {
					con.Map.SetZoom(c.Int("zoom"))
				}
				center := con.Map.Center(ctx)
				return render(c, mapView{
					Latitude:  center.Lat,
					Longitude: center.Lng,
					Zoom:      con.Map.Zoom(),
					Favorites: con.App.Favorites(ctx),
				})
			})
		},
	}
}

// EnvCommand reads the env service.
func EnvCommand() *cli.Command {
	return &cli.Command{
		Name:  "env",
		Usage: "Show variables published by the env service",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "List all variables",
				Action: envShow,
			},
			{
				Name:      "get",
				Usage:     "Print one variable as published",
				ArgsUsage: "KEY",
				Action:    envGet,
			},
			{
				Name:      "reveal",
				Usage:     "Decrypt a sealed variable with secret_key",
				ArgsUsage: "KEY",
				Action:    envReveal,
			},
		},
		Action: envShow,
	}
}

func loadEnv(ctx context.Context, c *cli.Context, con *app.Console) error {
	return fetching(c, "Loading env", func() error {
		_, err := con.Env.Load(ctx)
		return err
	})
}

func envShow(c *cli.Context) error {
	return visit(c, router.RouteEnv, func(ctx context.Context, con *app.Console) error {
		if err := loadEnv(ctx, c, con); err != nil {
			return err
		}
		return render(c, con.Env.Env())
	})
}

func envGet(c *cli.Context) error {
	key, err := requireArg(c, "KEY")
	if err != nil {
		return err
	}
	return visit(c, router.RouteEnv, func(ctx context.Context, con *app.Console) error {
		if err := loadEnv(ctx, c, con); err != nil {
			return err
		}
		v, ok := con.Env.Get(key)
		if !ok {
			return domain.ErrNotFound.WithDetails(key)
		}
		printf(c, "%s\n", v)
		return nil
	})
}

func envReveal(c *cli.Context) error {
	key, err := requireArg(c, "KEY")
	if err != nil {
		return err
	}
	return visit(c, router.RouteEnv, func(ctx context.Context, con *app.Console) error {
		if err := loadEnv(ctx, c, con); err != nil {
			return err
		}
		v, err := con.Env.Reveal(key)
		if err != nil {
			if errors.Is(err, store.ErrNoSecret) {
				return domain.ErrConfig.WithDetails("set secret_key to reveal " + key)
			}
			return err
		}
		printf(c, "%s\n", v)
		return nil
	})
}
