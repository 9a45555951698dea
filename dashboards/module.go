package dashboards

import (
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/reporters"
)

type Module struct {
	dscope.Module
	Configs   configs.Module
	Logs      logs.Module
	Metrics   metrics.Module
	Reporters reporters.Module
}
