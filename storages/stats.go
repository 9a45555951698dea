package storages

import (
	"context"
	"database/sql"
	"time"
)

type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	ByTopic    map[string]int `json:"by_topic"`
	ByEmotion  map[string]int `json:"by_emotion"`
	Oldest     time.Time      `json:"oldest,omitzero"`
	Newest     time.Time      `json:"newest,omitzero"`
}

func (j *Journal) Stats(ctx context.Context) (ret Stats, err error) {
	err = j.WithTx(ctx, func(tx Tx) error {
		var oldest, newest sql.NullInt64
		if err := tx.QueryRow(ctx,
			`SELECT count(*), min(created_at), max(created_at) FROM entries`,
		).Scan(&ret.Total, &oldest, &newest); err != nil {
			return wrap(err)
		}
		if oldest.Valid {
			ret.Oldest = time.Unix(0, oldest.Int64)
		}
		if newest.Valid {
			ret.Newest = time.Unix(0, newest.Int64)
		}

		for column, m := range map[string]*map[string]int{
			"category": &ret.ByCategory,
			"topic":    &ret.ByTopic,
			"emotion":  &ret.ByEmotion,
		} {
			counts, err := countBy(ctx, tx, column)
			if err != nil {
				return err
			}
			*m = counts
		}
		return nil
	})
	return
}

// column is one of a fixed set, never user input.
func countBy(ctx context.Context, tx Tx, column string) (map[string]int, error) {
	rows, err := tx.Query(ctx, `SELECT `+column+`, count(*) FROM entries GROUP BY `+column)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()
	ret := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, wrap(err)
		}
		ret[key] = n
	}
	return ret, wrap(rows.Err())
}
