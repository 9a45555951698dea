package senders

import (
	"bufio"
	"errors"
	"net"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/modes"
	"github.com/reusee/bridges/peers"
	"github.com/sony/gobreaker"
)

// lineServer collects lines written to a loopback port.
func lineServer(t *testing.T) (int, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		ln.Close()
	})
	lines := make(chan string, 16)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				scanner := bufio.NewScanner(conn)
				for scanner.Scan() {
					lines <- scanner.Text()
				}
			}()
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port, lines
}

// closedPort returns a port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func receive(t *testing.T, lines <-chan string) string {
	t.Helper()
	select {
	case line := <-lines:
		return line
	case <-time.After(5 * time.Second):
		t.Fatal("nothing received")
	}
	return ""
}

func testScope(t *testing.T, table peers.Peers) dscope.Scope {
	return dscope.New(
		new(Module),
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Fork(func() peers.Peers {
		return table
	})
}

func TestSend(t *testing.T) {
	port, lines := lineServer(t)
	testScope(t, peers.Peers{
		{Name: "threshold", Host: "127.0.0.1", Port: port},
	}).Call(func(
		sender *Sender,
		m *metrics.Metrics,
	) {
		if err := sender.Send(t.Context(), "threshold", "hello"); err != nil {
			t.Fatal(err)
		}
		if got := receive(t, lines); got != "hello" {
			t.Fatalf("got %q", got)
		}
		if n := testutil.ToFloat64(m.Sends.WithLabelValues("threshold", "ok")); n != 1 {
			t.Fatalf("got %v", n)
		}

		if err := sender.Send(t.Context(), "nobody", "hello"); !errors.Is(err, ErrUnknownPeer) {
			t.Fatalf("got %v", err)
		}
		if err := sender.Send(t.Context(), "threshold", "two\nlines"); !errors.Is(err, ErrBadText) {
			t.Fatalf("got %v", err)
		}
		if err := sender.Send(t.Context(), "threshold", "\xff"); !errors.Is(err, ErrBadText) {
			t.Fatalf("got %v", err)
		}
	})
}

func TestBreakerOpens(t *testing.T) {
	port := closedPort(t)
	testScope(t, peers.Peers{
		{Name: "gone", Host: "127.0.0.1", Port: port},
	}).Call(func(
		sender *Sender,
		m *metrics.Metrics,
	) {
		for range breakerFailures {
			err := sender.Send(t.Context(), "gone", "ping")
			if err == nil {
				t.Fatal("should fail")
			}
			if errors.Is(err, gobreaker.ErrOpenState) {
				t.Fatal("opened too early")
			}
		}
		err := sender.Send(t.Context(), "gone", "ping")
		if !errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("got %v", err)
		}
		if n := testutil.ToFloat64(m.Sends.WithLabelValues("gone", "open")); n != 1 {
			t.Fatalf("got %v", n)
		}
	})
}

func TestBroadcast(t *testing.T) {
	portA, linesA := lineServer(t)
	portB, linesB := lineServer(t)
	testScope(t, peers.Peers{
		{Name: "self", Host: "127.0.0.1", Port: closedPort(t)},
		{Name: "a", Host: "127.0.0.1", Port: portA},
		{Name: "b", Host: "127.0.0.1", Port: portB},
		{Name: "down", Host: "127.0.0.1", Port: closedPort(t)},
	}).Call(func(
		sender *Sender,
	) {
		results := sender.Broadcast(t.Context(), "all hands", "self")
		var names []string
		for _, result := range results {
			names = append(names, result.Peer)
			if (result.Err != nil) != (result.Peer == "down") {
				t.Fatalf("%s: got %v", result.Peer, result.Err)
			}
		}
		if got := strings.Join(names, ","); got != "a,b,down" {
			t.Fatalf("got %s", got)
		}
		got := []string{receive(t, linesA), receive(t, linesB)}
		sort.Strings(got)
		if got[0] != "all hands" || got[1] != "all hands" {
			t.Fatalf("got %v", got)
		}
	})
}

func TestProbe(t *testing.T) {
	port, _ := lineServer(t)
	testScope(t, nil).Call(func(
		sender *Sender,
	) {
		if err := sender.Probe(t.Context(), peers.Peer{Name: "up", Host: "127.0.0.1", Port: port}); err != nil {
			t.Fatal(err)
		}
		if err := sender.Probe(t.Context(), peers.Peer{Name: "down", Host: "127.0.0.1", Port: closedPort(t)}); err == nil {
			t.Fatal("should fail")
		}
	})
}
