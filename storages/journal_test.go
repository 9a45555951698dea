package storages

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/modes"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(t.Context(), filepath.Join(t.TempDir(), "sub", "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		j.Close()
	})
	return j
}

func TestAppendDefaults(t *testing.T) {
	j := openTestJournal(t)
	e, err := j.Append(t.Context(), Entry{
		Content: "  first light  ",
		Valence: 3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.ID == 0 {
		t.Fatal("no id")
	}
	if e.Content != "first light" {
		t.Fatalf("got %q", e.Content)
	}
	if e.Category != CategoryJournal || e.Emotion != DefaultEmotion || e.Topic != DefaultTopic {
		t.Fatalf("got %+v", e)
	}
	if e.Valence != 1 {
		t.Fatalf("got %v", e.Valence)
	}

	e, err = j.Append(t.Context(), Entry{Content: "undecided", Valence: math.NaN()})
	if err != nil {
		t.Fatal(err)
	}
	if e.Valence != 0 {
		t.Fatalf("got %v", e.Valence)
	}
	got, err := j.Recent(t.Context(), "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Valence != 0 {
		t.Fatalf("got %+v", got)
	}

	if _, err := j.Append(t.Context(), Entry{Content: " \n "}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("got %v", err)
	}
	if _, err := j.Append(t.Context(), Entry{Content: "x", Category: "dreams"}); !errors.Is(err, ErrBadCategory) {
		t.Fatalf("got %v", err)
	}
}

func TestRecent(t *testing.T) {
	j := openTestJournal(t)
	base := time.Now().Add(-time.Hour)
	for i, text := range []string{"a", "b", "c", "d"} {
		if _, err := j.Append(t.Context(), Entry{
			Content: text,
			Time:    base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := j.Append(t.Context(), Insight("patterns repeat", "", 0.8)); err != nil {
		t.Fatal(err)
	}

	entries, err := j.Recent(t.Context(), CategoryJournal, 3)
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, e := range entries {
		texts = append(texts, e.Content)
	}
	if got := strings.Join(texts, ""); got != "dcb" {
		t.Fatalf("got %s", got)
	}

	all, err := j.Recent(t.Context(), "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Fatalf("got %d", len(all))
	}
	if all[0].Content != "Insight: patterns repeat (Context: general, Confidence: 0.8)" {
		t.Fatalf("got %s", all[0].Content)
	}
	if all[0].Emotion != InsightEmotion || all[0].Topic != InsightTopic {
		t.Fatalf("got %+v", all[0])
	}

	none, err := j.Recent(t.Context(), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("got %d", len(none))
	}
}

func TestStats(t *testing.T) {
	j := openTestJournal(t)
	stats, err := j.Stats(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 0 || !stats.Oldest.IsZero() {
		t.Fatalf("got %+v", stats)
	}

	for _, e := range []Entry{
		{Content: "one", Topic: "scratchpad_whisper"},
		{Content: "two", Topic: "scratchpad_whisper"},
		{Content: "three", Category: CategoryCreative, Emotion: "🌙"},
	} {
		if _, err := j.Append(t.Context(), e); err != nil {
			t.Fatal(err)
		}
	}
	stats, err = j.Stats(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 {
		t.Fatalf("got %d", stats.Total)
	}
	if stats.ByTopic["scratchpad_whisper"] != 2 || stats.ByTopic[DefaultTopic] != 1 {
		t.Fatalf("got %v", stats.ByTopic)
	}
	if stats.ByCategory["journal"] != 2 || stats.ByCategory["creative"] != 1 {
		t.Fatalf("got %v", stats.ByCategory)
	}
	if stats.ByEmotion["🌙"] != 1 {
		t.Fatalf("got %v", stats.ByEmotion)
	}
	if stats.Newest.Before(stats.Oldest) {
		t.Fatalf("got %v %v", stats.Oldest, stats.Newest)
	}
}

func TestPrune(t *testing.T) {
	j := openTestJournal(t)
	now := time.Now()
	old := now.Add(-40 * 24 * time.Hour)
	for _, e := range []Entry{
		{Content: "gloomy", Valence: -0.5, Time: now},
		{Content: "ancient", Time: old},
		{Content: "ancient but kept", Time: old, Topic: "stress_test"},
		{Content: "gloomy but kept", Valence: -0.9, Topic: "pruning_ritual"},
		{Content: "fresh", Valence: 0.2, Time: now},
		{Content: "borderline", Valence: -0.3, Time: now},
		{Content: "calm and kept", Valence: 0.5, Time: now, Topic: "stress_test"},
	} {
		if _, err := j.Append(t.Context(), e); err != nil {
			t.Fatal(err)
		}
	}

	opts := DefaultPruneOptions()
	opts.Now = now
	res, err := j.Prune(t.Context(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Before != 7 || res.After != 5 {
		t.Fatalf("got %+v", res)
	}
	if res.LowValence != 1 || res.TooOld != 1 || res.Protected != 2 {
		t.Fatalf("got %+v", res)
	}

	entries, err := j.Recent(t.Context(), "", 10)
	if err != nil {
		t.Fatal(err)
	}
	kept := make(map[string]bool)
	for _, e := range entries {
		kept[e.Content] = true
	}
	for _, text := range []string{"ancient but kept", "gloomy but kept", "fresh", "borderline", "calm and kept"} {
		if !kept[text] {
			t.Fatalf("%s pruned", text)
		}
	}
}

func TestWithTxRollback(t *testing.T) {
	j := openTestJournal(t)
	fail := errors.New("fail")
	err := j.WithTx(t.Context(), func(tx Tx) error {
		if _, err := tx.Exec(t.Context(),
			`INSERT INTO entries (category, created_at, content, emotion, topic) VALUES ('journal', 1, 'x', 'e', 't')`,
		); err != nil {
			return err
		}
		return fail
	})
	if !errors.Is(err, fail) {
		t.Fatalf("got %v", err)
	}
	stats, err := j.Stats(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 0 {
		t.Fatalf("got %d", stats.Total)
	}
}

func TestOpenJournalProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provided.db")
	dscope.New(
		new(Module),
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Fork(func() JournalPath {
		return JournalPath(path)
	}).Call(func(
		open OpenJournal,
	) {
		j, err := open(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		defer j.Close()
		if j.Path() != path {
			t.Fatalf("got %s", j.Path())
		}
	})
}

func TestDefaultJournalPath(t *testing.T) {
	t.Setenv("BRIDGE_JOURNAL", "")
	dscope.New(
		new(Module),
		modes.ForTest(t),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Call(func(
		path JournalPath,
	) {
		if !strings.HasSuffix(string(path), filepath.Join("bridges", "journal.db")) {
			t.Fatalf("got %s", path)
		}
	})
}
