package scripts

import (
	"context"
	"sync"

	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/peers"
	"github.com/reusee/bridges/senders"
	"github.com/reusee/bridges/states"
	"github.com/reusee/bridges/storages"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
)

// Console is an interactive Starlark session over a store, the sender and
// the journal.
type Console struct {
	store       *states.Store
	sender      *senders.Sender
	openJournal storages.OpenJournal
	peers       peers.Peers
	logger      logs.Logger

	journalOnce sync.Once
	journal     *storages.Journal
	journalErr  error
}

func (Module) Console(
	store *states.Store,
	sender *senders.Sender,
	openJournal storages.OpenJournal,
	all peers.Peers,
	logger logs.Logger,
) *Console {
	return &Console{
		store:       store,
		sender:      sender,
		openJournal: openJournal,
		peers:       all,
		logger:      logger,
	}
}

func (c *Console) getJournal(ctx context.Context) (*storages.Journal, error) {
	c.journalOnce.Do(func() {
		c.journal, c.journalErr = c.openJournal(ctx)
	})
	return c.journal, c.journalErr
}

func (c *Console) Close() error {
	if c.journal != nil {
		return c.journal.Close()
	}
	return nil
}

// Run reads statements from the terminal until EOF or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	defer c.Close()
	globals := c.Globals(ctx)
	c.logger.InfoContext(ctx, "console", "globals", len(globals))

	thread := &starlark.Thread{
		Name: "console",
	}
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel("interrupted")
	})
	defer stop()

	repl.REPLOptions(fileOptions, thread, globals)
	return nil
}

func (c *Console) Globals(ctx context.Context) starlark.StringDict {
	globals := stateBuiltins(c.store)

	globals["reset"] = starlark.NewBuiltin("reset", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs); err != nil {
			return nil, err
		}
		c.store.Reset()
		return toStarlarkValue(c.store.GetAll()), nil
	})

	globals["peers"] = toStarlarkValue(c.peers)
	globals["baseline"] = toStarlarkValue(c.store.Baseline())

	globals["send"] = starlark.NewBuiltin("send", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var peer, text string
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "peer", &peer, "text", &text); err != nil {
			return nil, err
		}
		if err := c.sender.Send(ctx, peer, text); err != nil {
			return nil, err
		}
		return starlark.None, nil
	})

	globals["broadcast"] = starlark.NewBuiltin("broadcast", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var text, except string
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "text", &text, "except?", &except); err != nil {
			return nil, err
		}
		d := starlark.NewDict(len(c.peers))
		for _, result := range c.sender.Broadcast(ctx, text, except) {
			d.SetKey(starlark.String(result.Peer), toStarlarkValue(result.Err))
		}
		return d, nil
	})

	globals["journal"] = starlark.NewBuiltin("journal", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var content, emotion, topic, category string
		var valenceArg starlark.Value
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
			"content", &content,
			"emotion?", &emotion,
			"topic?", &topic,
			"valence?", &valenceArg,
			"category?", &category,
		); err != nil {
			return nil, err
		}
		var valence float64
		if valenceArg != nil {
			v, err := number(fn.Name(), "valence", valenceArg)
			if err != nil {
				return nil, err
			}
			valence = v
		}
		j, err := c.getJournal(ctx)
		if err != nil {
			return nil, err
		}
		entry, err := j.Append(ctx, storages.Entry{
			Category: storages.Category(category),
			Content:  content,
			Emotion:  emotion,
			Topic:    topic,
			Valence:  valence,
		})
		if err != nil {
			return nil, err
		}
		return toStarlarkValue(entry), nil
	})

	globals["insight"] = starlark.NewBuiltin("insight", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var content, about string
		var confidenceArg starlark.Value
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
			"content", &content,
			"context?", &about,
			"confidence?", &confidenceArg,
		); err != nil {
			return nil, err
		}
		confidence := 0.8
		if confidenceArg != nil {
			v, err := number(fn.Name(), "confidence", confidenceArg)
			if err != nil {
				return nil, err
			}
			confidence = v
		}
		j, err := c.getJournal(ctx)
		if err != nil {
			return nil, err
		}
		entry, err := j.Append(ctx, storages.Insight(content, about, confidence))
		if err != nil {
			return nil, err
		}
		return toStarlarkValue(entry), nil
	})

	globals["recall"] = starlark.NewBuiltin("recall", func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		limit := 5
		var category string
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "limit?", &limit, "category?", &category); err != nil {
			return nil, err
		}
		j, err := c.getJournal(ctx)
		if err != nil {
			return nil, err
		}
		entries, err := j.Recent(ctx, storages.Category(category), limit)
		if err != nil {
			return nil, err
		}
		return toStarlarkValue(entries), nil
	})

	return globals
}

// Exec runs src against the console globals, for scripted sessions.
func (c *Console) Exec(ctx context.Context, filename string, src any) (starlark.StringDict, error) {
	thread := &starlark.Thread{
		Name: "console-exec",
		Print: func(_ *starlark.Thread, msg string) {
			c.logger.InfoContext(ctx, "console print", "text", msg)
		},
	}
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel("interrupted")
	})
	defer stop()
	globals, err := starlark.ExecFileOptions(fileOptions, thread, filename, src, c.Globals(ctx))
	if err != nil {
		return nil, wrap(err)
	}
	return globals, nil
}
