package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/reusee/dscope"
	"github.com/reusee/bridges/cmds"
	"github.com/reusee/bridges/listeners"
	"github.com/reusee/bridges/modes"
)

type action func(ctx context.Context, scope dscope.Scope) error

var run action = serve

func define(name string, desc string, fn any) {
	cmds.Define(name, cmds.Func(fn).Desc(desc))
}

func init() {
	define("serve", "run listeners, reporter, dashboard and watcher (default)", func() {
		run = serve
	})
	define("send", "send TEXT to PEER", func(peer string, text string) {
		run = func(ctx context.Context, scope dscope.Scope) error {
			return send(ctx, scope, peer, text)
		}
	})
	define("broadcast", "send TEXT to every peer except this one", func(text string) {
		run = func(ctx context.Context, scope dscope.Scope) error {
			return broadcast(ctx, scope, text)
		}
	})
	define("status", "print peers and whether they accept connections", func() {
		run = status
	})
	define("console", "interactive starlark console", func() {
		run = console
	})
	define("journal", "append TEXT to the journal", func(text string) {
		run = func(ctx context.Context, scope dscope.Scope) error {
			return journal(ctx, scope, text)
		}
	})
	define("insight", "record TEXT as an insight", func(text string) {
		run = func(ctx context.Context, scope dscope.Scope) error {
			return insight(ctx, scope, text)
		}
	})
	define("recall", "print the latest N journal entries", func(n int) {
		run = func(ctx context.Context, scope dscope.Scope) error {
			return recall(ctx, scope, n)
		}
	})
	define("stats", "print journal statistics", func() {
		run = stats
	})
	define("prune", "drop low valence and old journal entries", func() {
		run = prune
	})
}

func main() {
	cmds.Execute(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)

	if err := run(ctx, scope); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}

// exitCode is 3 when a listener port is taken, 1 for other errors.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, listeners.ErrPortInUse):
		return 3
	default:
		return 1
	}
}
