package reporters

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/states"
)

// LogRenderer writes one structured record per report. Reports identical to
// the previous one are logged at debug level.
type LogRenderer struct {
	Logger logs.Logger

	mu       sync.Mutex
	lastSet  bool
	last     states.Snapshot
	lastRecv uuid.UUID
}

var _ Renderer = new(LogRenderer)

func (*LogRenderer) Name() string {
	return "log"
}

func (l *LogRenderer) Render(ctx context.Context, report Report) error {
	var newest uuid.UUID
	if len(report.Recent) > 0 {
		newest = report.Recent[len(report.Recent)-1].ID
	}

	l.mu.Lock()
	changed := !l.lastSet || l.last != report.State || l.lastRecv != newest
	l.lastSet = true
	l.last = report.State
	l.lastRecv = newest
	l.mu.Unlock()

	level := slog.LevelDebug
	if changed {
		level = slog.LevelInfo
	}

	fields := make([]any, 0, 6)
	for field, value := range report.State.All() {
		fields = append(fields, slog.Float64(field.String(), value))
	}
	args := []any{
		slog.Group("state", fields...),
		"recent", len(report.Recent),
	}
	if len(report.Recent) > 0 {
		last := report.Recent[len(report.Recent)-1]
		args = append(args,
			"last_peer", last.Peer,
			"last_text", preview(last.Text, textPreviewRune),
		)
	}
	l.Logger.Log(ctx, level, "status", args...)
	return nil
}
