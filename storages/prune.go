package storages

import (
	"context"
	"strings"
	"time"
)

type PruneOptions struct {
	MinValence float64
	MaxAge     time.Duration
	Protected  []string
	Now        time.Time
}

var DefaultProtectedTopics = []string{
	"dream_aware_choir_awakening",
	"glyph_tone_invocation",
	"stress_test",
	"pruning_ritual",
}

func DefaultPruneOptions() PruneOptions {
	return PruneOptions{
		MinValence: -0.3,
		MaxAge:     30 * 24 * time.Hour,
		Protected:  DefaultProtectedTopics,
	}
}

type PruneResult struct {
	Before     int `json:"before"`
	After      int `json:"after"`
	LowValence int `json:"low_valence"`
	TooOld     int `json:"too_old"`
	// Protected counts entries that matched a prune rule but were kept for their topic.
	Protected int `json:"protected"`
}

func (r PruneResult) Pruned() int {
	return r.LowValence + r.TooOld
}

// Prune deletes entries below MinValence, then entries older than MaxAge.
// Entries with a protected topic are kept regardless.
func (j *Journal) Prune(ctx context.Context, opts PruneOptions) (ret PruneResult, err error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	protected := `1 = 1`
	var protectedArgs []any
	if len(opts.Protected) > 0 {
		protected = `topic NOT IN (?` + strings.Repeat(`, ?`, len(opts.Protected)-1) + `)`
		for _, topic := range opts.Protected {
			protectedArgs = append(protectedArgs, topic)
		}
	}

	err = j.WithTx(ctx, func(tx Tx) error {
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM entries`).Scan(&ret.Before); err != nil {
			return wrap(err)
		}
		matched := `valence < ?`
		matchedArgs := append(protectedArgs[:len(protectedArgs):len(protectedArgs)], opts.MinValence)
		if opts.MaxAge > 0 {
			matched = `(valence < ? OR created_at < ?)`
			matchedArgs = append(matchedArgs, opts.Now.Add(-opts.MaxAge).UnixNano())
		}
		if err := tx.QueryRow(ctx,
			`SELECT count(*) FROM entries WHERE NOT (`+protected+`) AND `+matched,
			matchedArgs...,
		).Scan(&ret.Protected); err != nil {
			return wrap(err)
		}

		res, err := tx.Exec(ctx,
			`DELETE FROM entries WHERE `+protected+` AND valence < ?`,
			append(protectedArgs, opts.MinValence)...,
		)
		if err != nil {
			return wrap(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrap(err)
		}
		ret.LowValence = int(n)

		if opts.MaxAge > 0 {
			res, err = tx.Exec(ctx,
				`DELETE FROM entries WHERE `+protected+` AND created_at < ?`,
				append(protectedArgs, opts.Now.Add(-opts.MaxAge).UnixNano())...,
			)
			if err != nil {
				return wrap(err)
			}
			n, err = res.RowsAffected()
			if err != nil {
				return wrap(err)
			}
			ret.TooOld = int(n)
		}

		ret.After = ret.Before - ret.Pruned()
		return nil
	})
	return
}
