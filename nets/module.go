package nets

import (
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
	Logs    logs.Module
}
