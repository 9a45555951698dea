package scripts

import (
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/peers"
	"github.com/reusee/bridges/senders"
	"github.com/reusee/bridges/states"
	"github.com/reusee/bridges/storages"
)

type Module struct {
	dscope.Module
	Configs  configs.Module
	Logs     logs.Module
	Peers    peers.Module
	Senders  senders.Module
	States   states.Module
	Storages storages.Module
}
