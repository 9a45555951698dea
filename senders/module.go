package senders

import (
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/messages"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/nets"
	"github.com/reusee/bridges/peers"
)

type Module struct {
	dscope.Module
	Logs     logs.Module
	Messages messages.Module
	Metrics  metrics.Module
	Nets     nets.Module
	Peers    peers.Module
}
