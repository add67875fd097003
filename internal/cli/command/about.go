package command

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/foxcodenine/iot-parking-console/internal/cli/app"
	"github.com/foxcodenine/iot-parking-console/internal/cli/router"
	"github.com/foxcodenine/iot-parking-console/internal/infra/buildinfo"
)

type about struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	AppURL    string `json:"app_url"`
	EnvURL    string `json:"env_url"`
}

// AboutCommand shows build and platform information.
func AboutCommand() *cli.Command {
	return &cli.Command{
		Name:  "about",
		Usage: "Show build and platform information",
		Action: func(c *cli.Context) error {
			return visit(c, router.RouteAbout, func(_ context.Context, con *app.Console) error {
				info := buildinfo.Get()
				return render(c, about{
					Version:   info.Version,
					Commit:    info.Commit,
					BuildTime: info.BuildTime,
					GoVersion: info.GoVersion,
					AppURL:    con.Config.AppURL,
					EnvURL:    con.Config.EnvURL,
				})
			})
		},
	}
}
