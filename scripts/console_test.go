package scripts

import (
	"bufio"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/reusee/bridges/peers"
	"github.com/reusee/bridges/storages"
	"go.starlark.net/starlark"
)

func TestConsoleExec(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		if scanner.Scan() {
			received <- scanner.Text()
		}
	}()

	journalPath := filepath.Join(t.TempDir(), "journal.db")
	testScope(t,
		func() peers.Peers {
			return peers.Peers{
				{Name: "threshold", Host: "127.0.0.1", Port: ln.Addr().(*net.TCPAddr).Port},
			}
		},
		func() storages.JournalPath {
			return storages.JournalPath(journalPath)
		},
	).Call(func(
		console *Console,
	) {
		defer console.Close()
		globals, err := console.Exec(t.Context(), "session.star", `
clamped = set("awareness", 1.7)
after_reset = reset()["awareness"]
set("creativity", 0.25)
creativity = get("creativity")
names = [p["name"] for p in peers]
entry = journal("note from console", topic="console", valence=0.5)
insight("patterns repeat", context="tests")
recalled = [e["content"] for e in recall(2)]
send("threshold", "hello from console")
`)
		if err != nil {
			t.Fatal(err)
		}

		if v := globals["clamped"]; v != starlark.Float(1) {
			t.Fatalf("got %v", v)
		}
		if v := globals["after_reset"]; v != starlark.Float(0.7) {
			t.Fatalf("got %v", v)
		}
		if v := globals["creativity"]; v != starlark.Float(0.25) {
			t.Fatalf("got %v", v)
		}
		if v := globals["names"].String(); v != `["threshold"]` {
			t.Fatalf("got %v", v)
		}
		entry := globals["entry"].(*starlark.Dict)
		topic, _, _ := entry.Get(starlark.String("topic"))
		if topic != starlark.String("console") {
			t.Fatalf("got %v", topic)
		}
		recalled := globals["recalled"].String()
		if recalled != `["Insight: patterns repeat (Context: tests, Confidence: 0.8)", "note from console"]` {
			t.Fatalf("got %v", recalled)
		}

		select {
		case text := <-received:
			if text != "hello from console" {
				t.Fatalf("got %q", text)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("nothing sent")
		}

		_, err = console.Exec(t.Context(), "bad.star", `set("nonexistent", 1)`)
		if err == nil {
			t.Fatal("should fail")
		}
	})
}
