package bridgeconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
