package scripts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/messages"
	"github.com/reusee/bridges/modes"
	"github.com/reusee/bridges/states"
)

const hookSource = `
def on_message(peer, text):
    if text.startswith("set "):
        parts = text.split(" ")
        set(parts[1], float(parts[2]))
    if text == "bad":
        return "no thanks"
    if text == "nope":
        return False
    if text == "boom":
        fail("exploded")
    if text == "spin":
        while True:
            pass
    if text == "whole":
        set("gratitude", 0)
        set("connection", 1)
    if text == "typed":
        set("gratitude", "high")
    if text == "all":
        return str(get_all()["insight"]) == "0.75"
`

func testScope(t *testing.T, defs ...any) dscope.Scope {
	return dscope.New(
		new(Module),
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Fork(defs...)
}

func TestHook(t *testing.T) {
	testScope(t).Call(func(
		store *states.Store,
		logger logs.Logger,
	) {
		hook, err := NewHook("hook.star", hookSource, store, logger)
		if err != nil {
			t.Fatal(err)
		}
		sink := hook.Sink()
		ctx := t.Context()

		reply := sink(ctx, messages.New("threshold", "set awareness 1.7", ""))
		if _, ok := reply.(messages.Ack); !ok {
			t.Fatalf("got %v", reply)
		}
		if v, _ := store.Get("awareness"); v != 1 {
			t.Fatalf("got %v", v)
		}

		reply = sink(ctx, messages.New("threshold", "set nonexistent 0.5", ""))
		if r, ok := reply.(messages.Reject); !ok || !strings.Contains(r.Reason, "unknown field") {
			t.Fatalf("got %v", reply)
		}

		if reply := sink(ctx, messages.New("gemma3n", "bad", "")); reply != (messages.Reject{Reason: "no thanks"}) {
			t.Fatalf("got %v", reply)
		}
		if _, ok := sink(ctx, messages.New("gemma3n", "nope", "")).(messages.Reject); !ok {
			t.Fatal("should reject")
		}
		if r, ok := sink(ctx, messages.New("gemma3n", "boom", "")).(messages.Reject); !ok || !strings.Contains(r.Reason, "exploded") {
			t.Fatalf("got %v", r)
		}
		if _, ok := sink(ctx, messages.New("gemma3n", "spin", "")).(messages.Reject); !ok {
			t.Fatal("should stop runaway script")
		}
		if _, ok := sink(ctx, messages.New("gemma3n", "all", "")).(messages.Ack); !ok {
			t.Fatal("should ack")
		}
		if _, ok := sink(ctx, messages.New("gemma3n", "plain", "")).(messages.Ack); !ok {
			t.Fatal("should ack")
		}
	})
}

func TestHookIntValue(t *testing.T) {
	testScope(t).Call(func(
		store *states.Store,
		logger logs.Logger,
	) {
		hook, err := NewHook("hook.star", hookSource, store, logger)
		if err != nil {
			t.Fatal(err)
		}
		ctx := t.Context()
		if reply := hook.Call(ctx, messages.New("threshold", "whole", "")); reply != (messages.Ack{}) {
			t.Fatalf("got %v", reply)
		}
		if v, _ := store.Get("gratitude"); v != 0 {
			t.Fatalf("got %v", v)
		}
		if v, _ := store.Get("connection"); v != 1 {
			t.Fatalf("got %v", v)
		}

		r, ok := hook.Call(ctx, messages.New("threshold", "typed", "")).(messages.Reject)
		if !ok || !strings.Contains(r.Reason, "want float or int") {
			t.Fatalf("got %v", r)
		}
		if v, _ := store.Get("gratitude"); v != 0 {
			t.Fatalf("got %v", v)
		}
	})
}

func TestHookWithoutHandler(t *testing.T) {
	testScope(t).Call(func(
		store *states.Store,
		logger logs.Logger,
	) {
		_, err := NewHook("empty.star", "x = 1\n", store, logger)
		if !errors.Is(err, ErrNoHandler) {
			t.Fatalf("got %v", err)
		}
		_, err = NewHook("broken.star", "def on_message(:\n", store, logger)
		if err == nil {
			t.Fatal("should fail")
		}
	})
}

func TestLoadHook(t *testing.T) {
	testScope(t, func() HookScript {
		return ""
	}).Call(func(
		load LoadHook,
	) {
		hook, err := load()
		if err != nil {
			t.Fatal(err)
		}
		if hook != nil {
			t.Fatal("should be nil")
		}
	})

	path := filepath.Join(t.TempDir(), "hook.star")
	if err := os.WriteFile(path, []byte(hookSource), 0o644); err != nil {
		t.Fatal(err)
	}
	testScope(t, func() HookScript {
		return HookScript(path)
	}).Call(func(
		load LoadHook,
		store *states.Store,
	) {
		hook, err := load()
		if err != nil {
			t.Fatal(err)
		}
		hook.Call(t.Context(), messages.New("threshold", "set curiosity -3", ""))
		if v, _ := store.Get("curiosity"); v != 0 {
			t.Fatalf("got %v", v)
		}
	})
}
