package scripts

import (
	"context"
	"fmt"
	"os"

	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/messages"
	"github.com/reusee/bridges/states"
	"github.com/reusee/bridges/vars"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// HookScript is a Starlark file defining on_message(peer, text).
type HookScript string

func (Module) HookScript(
	loader configs.Loader,
) HookScript {
	return vars.FirstNonZero(
		configs.First[HookScript](loader, "hook_script"),
		HookScript(os.Getenv("BRIDGE_HOOK")),
	)
}

const hookMaxSteps = 1_000_000

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
}

// Hook maps received messages to store updates. It is the only path from
// message content to state.
type Hook struct {
	path      string
	onMessage starlark.Callable
	logger    logs.Logger
}

// LoadHook returns a nil *Hook when no script is configured.
type LoadHook func() (*Hook, error)

func (Module) LoadHook(
	path HookScript,
	store *states.Store,
	logger logs.Logger,
) LoadHook {
	return func() (*Hook, error) {
		if path == "" {
			return nil, nil
		}
		hook, err := NewHook(string(path), nil, store, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("hook loaded", "path", string(path))
		return hook, nil
	}
}

// NewHook executes the script once. src follows starlark.ExecFile: nil reads path.
func NewHook(path string, src any, store *states.Store, logger logs.Logger) (*Hook, error) {
	thread := &starlark.Thread{
		Name: "hook-load",
		Print: func(_ *starlark.Thread, msg string) {
			logger.Info("hook print", "text", msg)
		},
	}
	thread.SetMaxExecutionSteps(hookMaxSteps)
	globals, err := starlark.ExecFileOptions(fileOptions, thread, path, src, stateBuiltins(store))
	if err != nil {
		return nil, wrap(fmt.Errorf("load hook %s: %w", path, err))
	}
	fn, ok := globals["on_message"].(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, path)
	}
	return &Hook{
		path:      path,
		onMessage: fn,
		logger:    logger,
	}, nil
}

func (h *Hook) Sink() messages.Sink {
	return h.Call
}

// Call runs on_message. Returning None or True acks, a string or False rejects.
// Script errors reject and never close the connection.
func (h *Hook) Call(ctx context.Context, msg messages.Message) messages.Reply {
	thread := &starlark.Thread{
		Name: "hook:" + msg.Peer,
		Print: func(_ *starlark.Thread, text string) {
			h.logger.InfoContext(ctx, "hook print", "text", text)
		},
	}
	thread.SetMaxExecutionSteps(hookMaxSteps)
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel("context done")
	})
	defer stop()

	ret, err := starlark.Call(thread, h.onMessage, starlark.Tuple{
		starlark.String(msg.Peer),
		starlark.String(msg.Text),
	}, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "hook error",
			"path", h.path,
			"id", msg.ID.String(),
			"error", err,
		)
		return messages.Reject{
			Reason: err.Error(),
		}
	}

	switch ret := ret.(type) {
	case starlark.String:
		if ret != "" {
			return messages.Reject{Reason: string(ret)}
		}
	case starlark.Bool:
		if !ret {
			return messages.Reject{Reason: "rejected by hook"}
		}
	}
	return messages.Ack{}
}
