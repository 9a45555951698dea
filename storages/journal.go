package storages

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reusee/bridges/configs"
	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/vars"
	_ "modernc.org/sqlite"
)

// Journal is the document store behind journal, recall, stats and prune.
type Journal struct {
	db   *sql.DB
	path string
}

type JournalPath string

func (Module) JournalPath(
	loader configs.Loader,
) JournalPath {
	return vars.FirstNonZero(
		configs.First[JournalPath](loader, "journal_path"),
		JournalPath(os.Getenv("BRIDGE_JOURNAL")),
		defaultJournalPath(),
	)
}

func defaultJournalPath() JournalPath {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return JournalPath(filepath.Join(dir, "bridges", "journal.db"))
}

type OpenJournal func(ctx context.Context) (*Journal, error)

func (Module) OpenJournal(
	path JournalPath,
	logger logs.Logger,
) OpenJournal {
	return func(ctx context.Context) (*Journal, error) {
		j, err := Open(ctx, string(path))
		if err != nil {
			return nil, err
		}
		logger.DebugContext(ctx, "journal opened", "path", string(path))
		return j, nil
	}
}

func Open(ctx context.Context, path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, wrap(err)
		}
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrap(fmt.Errorf("open journal: %w", err))
	}
	// one writer, sqlite serializes anyway
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, wrap(fmt.Errorf("ping journal: %w", err))
	}
	j := &Journal{
		db:   db,
		path: path,
	}
	if err := j.migrate(ctx); err != nil {
		db.Close()
		return nil, wrap(fmt.Errorf("migrate journal: %w", err))
	}
	return j, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) migrate(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    category TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    content TEXT NOT NULL,
    emotion TEXT NOT NULL,
    topic TEXT NOT NULL,
    valence REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS entries_category_time ON entries(category, created_at);
`)
	return err
}

// Append fills defaults and stores e, returning the stored entry.
func (j *Journal) Append(ctx context.Context, e Entry) (Entry, error) {
	e.Content = strings.TrimSpace(e.Content)
	if e.Content == "" {
		return e, ErrEmptyContent
	}
	if e.Category == "" {
		e.Category = CategoryJournal
	}
	if !e.Category.Valid() {
		return e, fmt.Errorf("%w: %s", ErrBadCategory, e.Category)
	}
	e.Emotion = vars.FirstNonZero(e.Emotion, DefaultEmotion)
	e.Topic = vars.FirstNonZero(e.Topic, DefaultTopic)
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if math.IsNaN(e.Valence) {
		e.Valence = 0
	}
	e.Valence = vars.Clamp(e.Valence, -1, 1)

	res, err := j.db.ExecContext(ctx,
		`INSERT INTO entries (category, created_at, content, emotion, topic, valence) VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.Category), e.Time.UnixNano(), e.Content, e.Emotion, e.Topic, e.Valence,
	)
	if err != nil {
		return e, wrap(err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return e, wrap(err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first. An empty category matches all.
func (j *Journal) Recent(ctx context.Context, category Category, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := `SELECT id, category, created_at, content, emotion, topic, valence FROM entries`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()
	var ret []Entry
	for rows.Next() {
		var e Entry
		var category string
		var nanos int64
		if err := rows.Scan(&e.ID, &category, &nanos, &e.Content, &e.Emotion, &e.Topic, &e.Valence); err != nil {
			return nil, wrap(err)
		}
		e.Category = Category(category)
		e.Time = time.Unix(0, nanos)
		ret = append(ret, e)
	}
	return ret, wrap(rows.Err())
}
