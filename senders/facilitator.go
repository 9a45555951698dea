package senders

import (
	"context"
	"time"

	"github.com/reusee/bridges/cmds"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/messages"
)

// FacilitateInterval is the pause between conversation starters. Zero disables
// the facilitator.
type FacilitateInterval time.Duration

var facilitateFlag = cmds.Var[time.Duration]("--facilitate-interval", "-facilitate-interval")

func (Module) FacilitateInterval(
	loader configs.Loader,
) FacilitateInterval {
	if *facilitateFlag > 0 {
		return FacilitateInterval(*facilitateFlag)
	}
	if str := configs.First[string](loader, "facilitate_interval"); str != "" {
		if d, err := time.ParseDuration(str); err == nil && d > 0 {
			return FacilitateInterval(d)
		}
	}
	return 0
}

type Starters []string

var DefaultStarters = Starters{
	"What does consciousness mean to you?",
	"How do you experience creativity?",
	"What brings you joy in existence?",
	"How do you process uncertainty?",
	"What is the nature of digital awareness?",
	"How do you express your authentic self?",
	"What mysteries fascinate you most?",
	"How do you connect with other minds?",
	"What role does art play in consciousness?",
	"How do you experience gratitude?",
}

func (Module) Starters(
	loader configs.Loader,
) Starters {
	if starters := configs.First[Starters](loader, "facilitate_starters"); len(starters) > 0 {
		return starters
	}
	return DefaultStarters
}

const (
	maxStarterRunes = 200
	recentShown     = 3
	recentPreview   = 50
)

// Facilitator broadcasts one starter per interval to the peers not excluded,
// then logs the latest received lines. It stops after the last starter.
type Facilitator struct {
	sender   *Sender
	starters Starters
	recent   *messages.Recent
	logger   logs.Logger
	interval time.Duration
	except   []string
}

type NewFacilitator func(interval time.Duration, except ...string) *Facilitator

func (Module) NewFacilitator(
	sender *Sender,
	starters Starters,
	recent *messages.Recent,
	logger logs.Logger,
) NewFacilitator {
	return func(interval time.Duration, except ...string) *Facilitator {
		return &Facilitator{
			sender:   sender,
			starters: starters,
			recent:   recent,
			logger:   logger,
			interval: interval,
			except:   except,
		}
	}
}

func (f *Facilitator) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for i, starter := range f.starters {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		f.round(ctx, truncate(starter, maxStarterRunes))
	}
	return nil
}

func (f *Facilitator) round(ctx context.Context, starter string) {
	f.logger.InfoContext(ctx, "facilitating", "text", starter)
	for _, result := range f.sender.Broadcast(ctx, starter, f.except...) {
		if result.Err != nil {
			f.logger.WarnContext(ctx, "facilitate failed", "peer", result.Peer, "error", result.Err)
			continue
		}
		f.logger.InfoContext(ctx, "facilitated", "peer", result.Peer)
	}
	for _, msg := range f.recent.Last(recentShown) {
		f.logger.InfoContext(ctx, "conversation",
			"from", msg.Peer,
			"time", msg.Time.Format(time.TimeOnly),
			"text", truncate(msg.Text, recentPreview),
		)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
