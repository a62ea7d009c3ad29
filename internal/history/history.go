package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB records one row per run so past reconciliations stay inspectable
// after the console scrolls away. Best-effort: a history failure never
// fails a run.
type DB struct {
	pool *sql.DB
}

type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Accepted   int
	Added      int
	Pruned     int
	FeedSize   int
	Note       string
}

func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(1) // sqlite wants one writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	if err := migrate(pool); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &DB{pool: pool}, nil
}

func (d *DB) Close() error {
	if d == nil || d.pool == nil {
		return nil
	}
	return d.pool.Close()
}

func migrate(pool *sql.DB) error {
	_, err := pool.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL,
  fetched INTEGER NOT NULL DEFAULT 0,
  accepted INTEGER NOT NULL DEFAULT 0,
  added INTEGER NOT NULL DEFAULT 0,
  pruned INTEGER NOT NULL DEFAULT 0,
  feed_size INTEGER NOT NULL DEFAULT 0,
  note TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`)
	return err
}

func (d *DB) Record(ctx context.Context, r Run) error {
	_, err := d.pool.ExecContext(ctx, `
INSERT INTO runs(started_at, finished_at, fetched, accepted, added, pruned, feed_size, note)
VALUES(?,?,?,?,?,?,?,?);`,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.UTC().Format(time.RFC3339),
		r.Fetched, r.Accepted, r.Added, r.Pruned, r.FeedSize, r.Note,
	)
	return err
}

// Tail returns the most recent n runs, newest first.
func (d *DB) Tail(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := d.pool.QueryContext(ctx, `
SELECT id, started_at, finished_at, fetched, accepted, added, pruned, feed_size, note
FROM runs
ORDER BY id DESC
LIMIT ?;`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Fetched, &r.Accepted, &r.Added, &r.Pruned, &r.FeedSize, &r.Note); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}
