package command

import (
	"context"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/foxcodenine/iot-parking-console/internal/cli/app"
	"github.com/foxcodenine/iot-parking-console/internal/cli/router"
	"github.com/foxcodenine/iot-parking-console/internal/core/domain"
)

// LogsCommand returns the device log subcommand group.
func LogsCommand() *cli.Command {
	rangeFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "Start: RFC 3339, YYYY-MM-DD[ HH:MM], or a duration ago such as 6h",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "End, same forms as --from (default now)",
		},
	}
	return &cli.Command{
		Name:  "logs",
		Usage: "Show device logs",
		Subcommands: []*cli.Command{
			{
				Name:      "activity",
				Usage:     "Occupancy samples of a device",
				ArgsUsage: "DEVICE_ID",
				Flags:     rangeFlags,
				Action:    logsActivity,
			},
			{
				Name:      "keepalive",
				Usage:     "Health reports of a device",
				ArgsUsage: "DEVICE_ID",
				Flags:     rangeFlags,
				Action:    logsKeepalive,
			},
		},
	}
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

// parseWhen reads an instant relative to now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "now" {
		return now, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.ErrInvalidArgument.WithDetails("cannot read time " + s)
}

// selectLogs points the debug store at the device and window of c.
func selectLogs(c *cli.Context, con *app.Console) error {
	id, err := requireArg(c, "DEVICE_ID")
	if err != nil {
		return err
	}
	con.Debug.SelectDevice(id)

	if !c.IsSet("from") && !c.IsSet("to") {
		return nil
	}
	now := time.Now()
	to, err := parseWhen(c.String("to"), now)
	if err != nil {
		return err
	}
	from := to.Add(-24 * time.Hour)
	if c.IsSet("from") {
		if from, err = parseWhen(c.String("from"), now); err != nil {
			return err
		}
	}
	return con.Debug.SetRange(from.UnixMilli(), to.UnixMilli())
}

func logsActivity(c *cli.Context) error {
	return visit(c, router.RouteDebug, func(ctx context.Context, con *app.Console) error {
		if err := selectLogs(c, con); err != nil {
			return err
		}
		err := fetching(c, "Fetching activity logs", func() error {
			_, err := con.Debug.FetchActivityLogs(ctx)
			return err
		})
		if err != nil {
			return err
		}
		return render(c, activityView(con.Debug.ActivityLogs()))
	})
}

func logsKeepalive(c *cli.Context) error {
	return visit(c, router.RouteKeepalive, func(ctx context.Context, con *app.Console) error {
		if err := selectLogs(c, con); err != nil {
			return err
		}
		err := fetching(c, "Fetching keepalive logs", func() error {
			_, err := con.Debug.FetchKeepaliveLogs(ctx)
			return err
		})
		if err != nil {
			return err
		}
		return render(c, keepaliveView(con.Debug.KeepaliveLogs()))
	})
}
