package main

import (
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/bridgeconfigs"
	"github.com/reusee/bridges/relays"
)

type Module struct {
	dscope.Module
	Relays  relays.Module
	Configs bridgeconfigs.Module
}
