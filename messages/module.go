package messages

import (
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/configs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
}
