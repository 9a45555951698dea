package listeners

import (
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/nets"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
	Nets    nets.Module
	Metrics metrics.Module
}
