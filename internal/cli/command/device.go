package command

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/foxcodenine/iot-parking-console/internal/cli/app"
	"github.com/foxcodenine/iot-parking-console/internal/cli/router"
	"github.com/foxcodenine/iot-parking-console/internal/cli/store"
	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
)

// DeviceCommand returns the device subcommand group.
func DeviceCommand() *cli.Command {
	return &cli.Command{
		Name:    "device",
		Aliases: []string{"devices", "dev"},
		Usage:   "Manage parking sensors",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List devices",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Match device ID or name",
					},
					&cli.StringFlag{
						Name:  "occupied",
						Usage: "Filter by occupancy: true, false",
					},
					&cli.StringFlag{
						Name:  "network",
						Usage: "Filter by network type",
					},
					&cli.BoolFlag{
						Name:    "favorites",
						Aliases: []string{"f"},
						Usage:   "Only favorite devices",
					},
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Include hidden devices",
					},
				},
				Action: deviceList,
			},
			{
				Name:      "get",
				Usage:     "Show one device",
				ArgsUsage: "DEVICE_ID",
				Action:    deviceGet,
			},
			{
				Name:  "create",
				Usage: "Register a device",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Usage: "Device ID", Required: true},
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.StringFlag{Name: "network", Usage: "Network type, e.g. nb or lora"},
					&cli.Float64Flag{Name: "firmware", Usage: "Firmware version"},
					&cli.Float64Flag{Name: "lat", Usage: "Latitude"},
					&cli.Float64Flag{Name: "lng", Usage: "Longitude"},
					&cli.BoolFlag{Name: "hidden", Usage: "Hide from the map"},
				},
				Action: deviceCreate,
			},
			{
				Name:      "update",
				Usage:     "Change device fields",
				ArgsUsage: "DEVICE_ID KEY=VALUE...",
				Action:    deviceUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a device",
				ArgsUsage: "DEVICE_ID",
				Action:    deviceDelete,
			},
			{
				Name:      "favorite",
				Aliases:   []string{"fav"},
				Usage:     "Toggle a device in your favorites",
				ArgsUsage: "DEVICE_ID",
				Action:    deviceFavorite,
			},
		},
	}
}

func requireArg(c *cli.Context, name string) (string, error) {
	v := c.Args().First()
	if v == "" {
		return "", domain.ErrInvalidArgument.WithDetails(name + " is required")
	}
	return v, nil
}

func favoriteSet(ctx context.Context, con *app.Console) map[string]bool {
	favs := con.App.Favorites(ctx)
	set := make(map[string]bool, len(favs))
	for _, id := range favs {
		set[id] = true
	}
	return set
}

func deviceList(c *cli.Context) error {
	filter := store.DeviceFilter{
		Query:         c.String("query"),
		Network:       c.String("network"),
		IncludeHidden: c.Bool("all"),
	}
	if v := c.String("occupied"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.ErrInvalidArgument.WithDetails("--occupied wants true or false")
		}
		filter.Occupied = &b
	}

	return visit(c, router.RouteDevices, func(ctx context.Context, con *app.Console) error {
		err := fetching(c, "Fetching devices", func() error {
			_, err := con.Devices.Fetch(ctx)
			return err
		})
		if err != nil {
			return err
		}
		if c.Bool("favorites") {
			filter.Only = con.App.Favorites(ctx)
			if filter.Only == nil {
				filter.Only = []string{}
			}
		}
		return render(c, devicesView{devices: con.Devices.List(filter), favorites: favoriteSet(ctx, con)})
	})
}

func deviceGet(c *cli.Context) error {
	id, err := requireArg(c, "DEVICE_ID")
	if err != nil {
		return err
	}
	return visit(c, router.RouteDevice, func(ctx context.Context, con *app.Console) error {
		d, err := con.Devices.Get(ctx, id)
		if err != nil {
			return err
		}
		return render(c, d)
	})
}

func deviceCreate(c *cli.Context) error {
	d := domain.Device{
		DeviceID:        c.String("id"),
		Name:            c.String("name"),
		NetworkType:     c.String("network"),
		FirmwareVersion: c.Float64("firmware"),
		Latitude:        c.Float64("lat"),
		Longitude:       c.Float64("lng"),
		IsHidden:        c.Bool("hidden"),
	}
	return visit(c, router.RouteDevices, func(ctx context.Context, con *app.Console) error {
		created, err := con.Devices.Create(ctx, d)
		if err != nil {
			return err
		}
		printf(c, "Device %s created.\n", created.DeviceID)
		return nil
	})
}

func deviceUpdate(c *cli.Context) error {
	id, err := requireArg(c, "DEVICE_ID")
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
	return visit(c, router.RouteDevice, func(ctx context.Context, con *app.Console) error {
		if _, err := con.Devices.Update(ctx, id, fields); err != nil {
			return err
		}
		printf(c, "Device %s updated.\n", id)
		return nil
	})
}

func deviceDelete(c *cli.Context) error {
	id, err := requireArg(c, "DEVICE_ID")
	if err != nil {
		return err
	}
	return visit(c, router.RouteDevices, func(ctx context.Context, con *app.Console) error {
		if err := con.Devices.Delete(ctx, id); err != nil {
			return err
		}
		printf(c, "Device %s deleted.\n", id)
		return nil
	})
}

func deviceFavorite(c *cli.Context) error {
	id, err := requireArg(c, "DEVICE_ID")
	if err != nil {
		return err
	}
	return visit(c, router.RouteDevices, func(ctx context.Context, con *app.Console) error {
		on, err := con.App.ToggleFavorite(ctx, id)
		if err != nil {
			return err
		}
		if err := con.App.UpdateFavorites(ctx); err != nil {
			// keep the local list in line with the platform
			con.App.ToggleFavorite(ctx, id)
			return err
		}
		if on {
			printf(c, "%s added to favorites.\n", id)
		} else {
			printf(c, "%s removed from favorites.\n", id)
		}
		return nil
	})
}
