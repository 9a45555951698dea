package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/bridges/scripts"
	"github.com/reusee/bridges/storages"
)

func console(ctx context.Context, scope dscope.Scope) error {
	return dscope.Get[*scripts.Console](scope).Run(ctx)
}

func withJournal(ctx context.Context, scope dscope.Scope, fn func(*storages.Journal) error) error {
	j, err := dscope.Get[storages.OpenJournal](scope)(ctx)
	if err != nil {
		return err
	}
	defer j.Close()
	return fn(j)
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func journal(ctx context.Context, scope dscope.Scope, text string) error {
	return withJournal(ctx, scope, func(j *storages.Journal) error {
		entry, err := j.Append(ctx, storages.Entry{
			Content: text,
		})
		if err != nil {
			return err
		}
		fmt.Printf("journaled #%d\n", entry.ID)
		return nil
	})
}

func insight(ctx context.Context, scope dscope.Scope, text string) error {
	return withJournal(ctx, scope, func(j *storages.Journal) error {
		entry, err := j.Append(ctx, storages.Insight(text, "", 0.8))
		if err != nil {
			return err
		}
		fmt.Printf("captured #%d\n", entry.ID)
		return nil
	})
}

func recall(ctx context.Context, scope dscope.Scope, n int) error {
	return withJournal(ctx, scope, func(j *storages.Journal) error {
		entries, err := j.Recent(ctx, "", n)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s %s [%s] %s\n", e.Time.Format("2006-01-02 15:04"), e.Emotion, e.Topic, e.Content)
		}
		return nil
	})
}

func stats(ctx context.Context, scope dscope.Scope) error {
	return withJournal(ctx, scope, func(j *storages.Journal) error {
		s, err := j.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(s)
	})
}

func prune(ctx context.Context, scope dscope.Scope) error {
	return withJournal(ctx, scope, func(j *storages.Journal) error {
		res, err := j.Prune(ctx, storages.DefaultPruneOptions())
		if err != nil {
			return err
		}
		return printJSON(res)
	})
}
