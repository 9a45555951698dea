package main

import (
	"context"

	"github.com/reusee/dscope"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/peers"
	"github.com/reusee/bridges/relays"
)

func serve(ctx context.Context, scope dscope.Scope) (err error) {
	scope.Call(func(
		all peers.Peers,
		relay *relays.Relay,
		logger logs.Logger,
	) {
		if err = all.Validate(); err != nil {
			return
		}
		if err = relay.Start(ctx); err != nil {
			return
		}
		<-ctx.Done()
		logger.Info("shutting down", "cause", context.Cause(ctx))
		err = relay.Shutdown()
	})
	return
}
