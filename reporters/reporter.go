package reporters

import (
	"context"
	"fmt"
	"time"

	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/messages"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/states"
)

// Reporter periodically renders the store and the latest messages. It only
// reads from the store.
type Reporter struct {
	interval  time.Duration
	store     *states.Store
	recent    *messages.Recent
	renderers []Renderer
	logger    logs.Logger
	metrics   *metrics.Metrics
}

type New func(renderers ...Renderer) *Reporter

func (Module) New(
	interval ReportInterval,
	store *states.Store,
	recent *messages.Recent,
	logger logs.Logger,
	m *metrics.Metrics,
) New {
	return func(renderers ...Renderer) *Reporter {
		return &Reporter{
			interval:  time.Duration(interval),
			store:     store,
			recent:    recent,
			renderers: renderers,
			logger:    logger,
			metrics:   m,
		}
	}
}

func (r *Reporter) Report() Report {
	return Report{
		Time:   time.Now(),
		State:  r.store.GetAll(),
		Recent: r.recent.Last(RecentShown),
	}
}

// Run renders once per interval until ctx is done.
func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.RenderOnce(ctx)
		}
	}
}

// RenderOnce builds one report and hands it to every renderer. Failures are
// logged and counted; the next tick tries again.
func (r *Reporter) RenderOnce(ctx context.Context) {
	report := r.Report()
	for _, renderer := range r.renderers {
		if err := r.render(ctx, renderer, report); err != nil {
			r.logger.WarnContext(ctx, "render error",
				"renderer", renderer.Name(),
				"error", err,
			)
			r.metrics.RenderErrors.WithLabelValues(renderer.Name()).Inc()
		}
	}
}

func (r *Reporter) render(ctx context.Context, renderer Renderer, report Report) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("renderer panic: %v", p)
		}
	}()
	return renderer.Render(ctx, report)
}
