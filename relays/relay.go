package relays

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/bridges/dashboards"
	"github.com/reusee/bridges/listeners"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/messages"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/peers"
	"github.com/reusee/bridges/reporters"
	"github.com/reusee/bridges/scripts"
	"github.com/reusee/bridges/senders"
	"github.com/reusee/bridges/states"
	"github.com/reusee/bridges/storages"
	"github.com/reusee/bridges/watchers"
)

// Relay runs every loop of one process: a listener per local peer, the
// reporter, and the optional dashboard, scratchpad watcher and facilitator.
type Relay struct {
	Locals             dscope.Inject[peers.LocalPeers]
	NewListener        dscope.Inject[listeners.New]
	NewReporter        dscope.Inject[reporters.New]
	Renderers          dscope.Inject[Renderers]
	NewServer          dscope.Inject[dashboards.NewServer]
	DashboardAddr      dscope.Inject[dashboards.DashboardAddr]
	NewScratchpad      dscope.Inject[watchers.NewScratchpad]
	ScratchpadPath     dscope.Inject[watchers.ScratchpadPath]
	LoadHook           dscope.Inject[scripts.LoadHook]
	NewFacilitator     dscope.Inject[senders.NewFacilitator]
	FacilitateInterval dscope.Inject[senders.FacilitateInterval]
	OpenJournal        dscope.Inject[storages.OpenJournal]
	Store              dscope.Inject[*states.Store]
	Recent             dscope.Inject[*messages.Recent]
	Metrics            dscope.Inject[*metrics.Metrics]
	Logger             dscope.Inject[logs.Logger]

	mu        sync.Mutex
	started   bool
	cancel    context.CancelFunc
	listeners []*listeners.Listener
	reporter  *reporters.Reporter
	server    *dashboards.Server
	journal   *storages.Journal
	wg        sync.WaitGroup
	errs      []error
}

func (Module) Relay(
	inject dscope.InjectStruct,
) *Relay {
	ret := new(Relay)
	inject(ret)
	return ret
}

var ErrStarted = errors.New("relay already started")

// Start binds every listener and the dashboard before launching any loop. A
// bind failure closes what was already bound and returns the error.
func (r *Relay) Start(ctx context.Context) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return ErrStarted
	}
	logger := r.Logger()

	hook, err := r.LoadHook()()
	if err != nil {
		return err
	}
	sink := messages.Record(r.Recent())
	if hook != nil {
		sink = messages.Chain(sink, hook.Sink())
	}

	var bound []*listeners.Listener
	defer func() {
		if err != nil {
			for _, l := range bound {
				l.Shutdown()
			}
		}
	}()
	for _, peer := range r.Locals() {
		l := r.NewListener()(peer, sink)
		if err := l.Listen(ctx); err != nil {
			logger.ErrorContext(ctx, "bind failed", "peer", peer.Name, "error", err)
			return err
		}
		bound = append(bound, l)
	}

	reporter := r.NewReporter()(r.Renderers()...)

	var server *dashboards.Server
	if addr := r.DashboardAddr(); addr != "" {
		server = r.NewServer()(string(addr), reporter.Report)
		if err := server.Listen(ctx); err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
	}

	r.exportState()

	runCtx, cancel := context.WithCancel(ctx)
	r.started = true
	r.cancel = cancel
	r.listeners = bound
	r.reporter = reporter
	r.server = server

	for _, l := range bound {
		r.spawn(runCtx, "listener "+l.Peer().Name, l.Serve)
	}
	r.spawn(runCtx, "reporter", reporter.Run)
	if server != nil {
		r.spawn(runCtx, "dashboard", server.Serve)
	}
	if path := r.ScratchpadPath(); path != "" {
		// the watcher is optional, a journal failure only disables it
		journal, err := r.OpenJournal()(ctx)
		if err != nil {
			logger.WarnContext(ctx, "scratchpad disabled", "error", err)
		} else {
			r.journal = journal
			r.spawn(runCtx, "scratchpad", r.NewScratchpad()(string(path), journal).Run)
		}
	}

	if interval := r.FacilitateInterval(); interval > 0 {
		// local peers are this process, starters go to the others
		facilitator := r.NewFacilitator()(time.Duration(interval), peers.Peers(r.Locals()).Names()...)
		r.spawn(runCtx, "facilitator", facilitator.Run)
	}

	logger.InfoContext(ctx, "relay started", "peers", peers.Peers(r.Locals()).Names())
	return nil
}

// exportState mirrors the store into the state gauge.
func (r *Relay) exportState() {
	gauge := r.Metrics().StateValue
	store := r.Store()
	for field, value := range store.GetAll().All() {
		gauge.WithLabelValues(field.String()).Set(value)
	}
	store.OnChange(func(field states.Field, value float64) {
		gauge.WithLabelValues(field.String()).Set(value)
	})
}

func (r *Relay) spawn(ctx context.Context, what string, fn func(context.Context) error) {
	r.wg.Go(func() {
		if err := fn(ctx); err != nil {
			r.Logger().ErrorContext(ctx, "loop error", "loop", what, "error", err)
			r.mu.Lock()
			r.errs = append(r.errs, fmt.Errorf("%s: %w", what, err))
			r.mu.Unlock()
		}
	})
}

// Wait blocks until every loop returned.
func (r *Relay) Wait() error {
	r.wg.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}

// Shutdown cancels every loop, closes sockets and connections, and waits.
func (r *Relay) Shutdown() error {
	r.mu.Lock()
	cancel := r.cancel
	bound := r.listeners
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	for _, l := range bound {
		l.Shutdown()
	}
	err := r.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.journal != nil {
		if closeErr := r.journal.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		r.journal = nil
	}
	r.Logger().Info("relay stopped")
	return err
}

func (r *Relay) Listeners() []*listeners.Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listeners
}

// DashboardListenAddr is nil when the dashboard is disabled or not started.
func (r *Relay) DashboardListenAddr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server == nil {
		return nil
	}
	return r.server.Addr()
}
