// internal/rank/rank.go
//
// Rankings persistence (SQLite).
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, FKs).
//   - Creating the rankings table when missing (idempotent).
//   - CRUD used by the public leaderboard and the admin panel.
//
// Schema:
//   rankings(id INTEGER PK AUTOINCREMENT, name TEXT, start_time TEXT,
//            end_time TEXT, duration REAL, guess_count INTEGER)
//
// Timestamps are stored as RFC3339 text. Only won games get a row;
// surrendered games are never inserted.

package rank

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS rankings (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT    NOT NULL,
    start_time  TEXT    NOT NULL,
    end_time    TEXT    NOT NULL,
    duration    REAL    NOT NULL,
    guess_count INTEGER NOT NULL
);`

// Row is one persisted ranking record.
type Row struct {
	ID         int64
	Name       string
	StartTime  time.Time
	EndTime    time.Time
	Duration   float64
	GuessCount int
}

// Repo wraps the rankings table.
type Repo struct {
	db *sql.DB
}

// Open opens (creating if missing) the SQLite database at dsn and ensures
// the schema exists.
func Open(dsn string) (*Repo, error) {
	// Ensure directory exists for ./data/ranking.db, etc.
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create rankings: %w", err)
	}
	return &Repo{db: db}, nil
}

// Close releases the underlying handle.
func (r *Repo) Close() error { return r.db.Close() }

// Insert adds a won game and returns the new row id.
func (r *Repo) Insert(ctx context.Context, row Row) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO rankings (name, start_time, end_time, duration, guess_count)
        VALUES (?, ?, ?, ?, ?)`,
		row.Name,
		row.StartTime.UTC().Format(time.RFC3339),
		row.EndTime.UTC().Format(time.RFC3339),
		row.Duration,
		row.GuessCount,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Top fetches the best rows: fewest guesses first, then fastest.
func (r *Repo) Top(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, start_time, end_time, duration, guess_count
        FROM rankings
        ORDER BY guess_count ASC, duration ASC, id ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

// List returns every row, newest first (admin view).
func (r *Repo) List(ctx context.Context) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, start_time, end_time, duration, guess_count
        FROM rankings
        ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

// Update overwrites one row. sql.ErrNoRows when id does not exist.
func (r *Repo) Update(ctx context.Context, row Row) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE rankings
        SET name=?, start_time=?, end_time=?, duration=?, guess_count=?
        WHERE id=?`,
		row.Name,
		row.StartTime.UTC().Format(time.RFC3339),
		row.EndTime.UTC().Format(time.RFC3339),
		row.Duration,
		row.GuessCount,
		row.ID,
	)
	if err != nil {
		return err
	}
	return requireHit(res)
}

// Delete removes one row. sql.ErrNoRows when id does not exist.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rankings WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireHit(res)
}

func requireHit(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()
	out := []Row{}
	for rows.Next() {
		var r Row
		var start, end string
		if err := rows.Scan(&r.ID, &r.Name, &start, &end, &r.Duration, &r.GuessCount); err != nil {
			return nil, err
		}
		r.StartTime, _ = time.Parse(time.RFC3339, start)
		r.EndTime, _ = time.Parse(time.RFC3339, end)
		out = append(out, r)
	}
	return out, rows.Err()
}
