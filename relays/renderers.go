package relays

import (
	"os"

	"github.com/reusee/bridges/cmds"
	"github.com/reusee/bridges/dashboards"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/reporters"
)

var textStatus = cmds.Switch("--text-status", "-text-status")

type Renderers []reporters.Renderer

func (Module) Renderers(
	logger logs.Logger,
	hub *dashboards.Hub,
	dashboardAddr dashboards.DashboardAddr,
) (ret Renderers) {
	ret = append(ret, &reporters.LogRenderer{
		Logger: logger,
	})
	if *textStatus {
		ret = append(ret, reporters.TextRenderer{
			W: os.Stdout,
		})
	}
	if dashboardAddr != "" {
		ret = append(ret, hub)
	}
	return
}
