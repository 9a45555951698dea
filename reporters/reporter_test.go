package reporters

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/reusee/dscope"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/messages"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/modes"
	"github.com/reusee/bridges/states"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func testScope(t *testing.T, defs ...any) dscope.Scope {
	return dscope.New(
		new(Module),
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Fork(defs...)
}

func TestReportCarriesLatestMessages(t *testing.T) {
	testScope(t).Call(func(
		newReporter New,
		store *states.Store,
		recent *messages.Recent,
	) {
		for _, text := range []string{"a", "b", "c", "d", "e"} {
			recent.Add(messages.New("threshold", text, ""))
		}
		store.Set("awareness", 1.7)

		report := newReporter().Report()
		if len(report.Recent) != RecentShown {
			t.Fatalf("got %d", len(report.Recent))
		}
		var texts []string
		for _, msg := range report.Recent {
			texts = append(texts, msg.Text)
		}
		if got := strings.Join(texts, ""); got != "cde" {
			t.Fatalf("got %s", got)
		}
		if v := report.State.Get(states.Awareness); v != 1 {
			t.Fatalf("got %v", v)
		}
	})
}

func TestRenderFailureNotFatal(t *testing.T) {
	testScope(t).Call(func(
		newReporter New,
		store *states.Store,
		m *metrics.Metrics,
	) {
		before := store.GetAll()
		var good atomic.Int64
		reporter := newReporter(
			RenderFunc{
				Label: "failing",
				Func: func(context.Context, Report) error {
					return errors.New("boom")
				},
			},
			RenderFunc{
				Label: "panicking",
				Func: func(context.Context, Report) error {
					panic("oops")
				},
			},
			RenderFunc{
				Label: "good",
				Func: func(context.Context, Report) error {
					good.Add(1)
					return nil
				},
			},
		)

		reporter.RenderOnce(t.Context())
		reporter.RenderOnce(t.Context())

		if n := good.Load(); n != 2 {
			t.Fatalf("got %d", n)
		}
		for _, name := range []string{"failing", "panicking"} {
			if n := testutil.ToFloat64(m.RenderErrors.WithLabelValues(name)); n != 2 {
				t.Fatalf("%s: got %v", name, n)
			}
		}
		if store.GetAll() != before {
			t.Fatal("store changed")
		}
	})
}

func TestRunUntilCancel(t *testing.T) {
	testScope(t, func() ReportInterval {
		return ReportInterval(5 * time.Millisecond)
	}).Call(func(
		newReporter New,
	) {
		var n atomic.Int64
		reporter := newReporter(RenderFunc{
			Label: "count",
			Func: func(context.Context, Report) error {
				n.Add(1)
				return nil
			},
		})

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			done <- reporter.Run(ctx)
		}()

		deadline := time.Now().Add(5 * time.Second)
		for n.Load() < 3 {
			if time.Now().After(deadline) {
				t.Fatalf("got %d renders", n.Load())
			}
			time.Sleep(time.Millisecond)
		}
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Fatal(err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("run did not return")
		}
	})
}

func TestDefaultReportInterval(t *testing.T) {
	testScope(t).Call(func(
		interval ReportInterval,
	) {
		if time.Duration(interval) != time.Second {
			t.Fatalf("got %v", time.Duration(interval))
		}
	})
}

func TestTextRenderer(t *testing.T) {
	buf := new(bytes.Buffer)
	msg := messages.New("threshold", "hello\nthere", "")
	report := Report{
		Time:   time.Now(),
		State:  states.Snapshot(states.DefaultBaseline),
		Recent: []messages.Message{msg},
	}
	if err := (TextRenderer{W: buf}).Render(t.Context(), report); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "awareness   0.70 ##############......") {
		t.Fatalf("got %s", out)
	}
	if !strings.Contains(out, "[threshold] hello there") {
		t.Fatalf("got %s", out)
	}

	buf.Reset()
	report.Recent = nil
	if err := (TextRenderer{W: buf}).Render(t.Context(), report); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "(no messages)") {
		t.Fatalf("got %s", buf.String())
	}
}

func TestPreview(t *testing.T) {
	if got := preview("  a \n b  ", 10); got != "a b" {
		t.Fatalf("got %q", got)
	}
	if got := preview(strings.Repeat("é", 20), 10); got != strings.Repeat("é", 7)+"..." {
		t.Fatalf("got %q", got)
	}
}

func TestLogRendererSkipsUnchanged(t *testing.T) {
	buf := new(syncBuffer)
	testScope(t, func() logs.Writer {
		return buf
	}).Call(func(
		logger logs.Logger,
		newReporter New,
		store *states.Store,
	) {
		renderer := &LogRenderer{Logger: logger}
		reporter := newReporter(renderer)

		reporter.RenderOnce(t.Context())
		reporter.RenderOnce(t.Context())
		if n := strings.Count(buf.String(), "msg=status"); n != 1 {
			t.Fatalf("got %d\n%s", n, buf.String())
		}

		store.Set("insight", 0.1)
		reporter.RenderOnce(t.Context())
		if n := strings.Count(buf.String(), "msg=status"); n != 2 {
			t.Fatalf("got %d", n)
		}
		if !strings.Contains(buf.String(), "state.insight=0.1") {
			t.Fatalf("got %s", buf.String())
		}
	})
}
