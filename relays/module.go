package relays

import (
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/dashboards"
	"github.com/reusee/bridges/listeners"
	"github.com/reusee/bridges/messages"
	"github.com/reusee/bridges/reporters"
	"github.com/reusee/bridges/scripts"
	"github.com/reusee/bridges/senders"
	"github.com/reusee/bridges/watchers"
)

type Module struct {
	dscope.Module
	Dashboards dashboards.Module
	Listeners  listeners.Module
	Messages   messages.Module
	Reporters  reporters.Module
	Scripts    scripts.Module
	Senders    senders.Module
	Watchers   watchers.Module
}
