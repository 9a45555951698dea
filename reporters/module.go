package reporters

import (
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/messages"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/states"
)

type Module struct {
	dscope.Module
	Configs  configs.Module
	Logs     logs.Module
	Messages messages.Module
	Metrics  metrics.Module
	States   states.Module
}
