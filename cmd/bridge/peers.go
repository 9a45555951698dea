package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/reusee/dscope"
	"github.com/reusee/bridges/peers"
	"github.com/reusee/bridges/senders"
)

func send(ctx context.Context, scope dscope.Scope, peer string, text string) error {
	return dscope.Get[*senders.Sender](scope).Send(ctx, peer, text)
}

func broadcast(ctx context.Context, scope dscope.Scope, text string) (err error) {
	scope.Call(func(
		sender *senders.Sender,
		self peers.SelfName,
	) {
		failed := 0
		for _, result := range sender.Broadcast(ctx, text, string(self)) {
			if result.Err != nil {
				failed++
				fmt.Printf("%s\t%v\n", result.Peer, result.Err)
				continue
			}
			fmt.Printf("%s\tok\n", result.Peer)
		}
		if failed > 0 {
			err = fmt.Errorf("%d peers failed", failed)
		}
	})
	return
}

func status(ctx context.Context, scope dscope.Scope) error {
	scope.Call(func(
		all peers.Peers,
		sender *senders.Sender,
	) {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PEER\tADDR\tSTATUS")
		for _, peer := range all {
			state := "up"
			if err := sender.Probe(ctx, peer); err != nil {
				state = "down"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", peer.Name, peer.Addr(), state)
		}
		w.Flush()
	})
	return nil
}
