package runindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one completed (or aborted) simulation run as recorded in the
// index.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Seed           int64
	SettingsDigest string
	Ticks          uint64
	Foos           int
	Bars           int
	Foobars        int
	Money          string
	Robots         int
	GameOver       bool
	JournalPath    string
}

// SQLiteIndex is the local bookkeeping database for past runs. It is a
// secondary record: the journals remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			seed INTEGER NOT NULL,
			settings_digest TEXT NOT NULL,
			ticks INTEGER NOT NULL,
			foos INTEGER NOT NULL,
			bars INTEGER NOT NULL,
			foobars INTEGER NOT NULL,
			money TEXT NOT NULL,
			robots INTEGER NOT NULL,
			game_over INTEGER NOT NULL,
			journal_path TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error { return s.db.Close() }

func (s *SQLiteIndex) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, seed, settings_digest,
			ticks, foos, bars, foobars, money, robots, game_over, journal_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			ticks = excluded.ticks,
			foos = excluded.foos,
			bars = excluded.bars,
			foobars = excluded.foobars,
			money = excluded.money,
			robots = excluded.robots,
			game_over = excluded.game_over`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Seed,
		run.SettingsDigest,
		run.Ticks,
		run.Foos,
		run.Bars,
		run.Foobars,
		run.Money,
		run.Robots,
		boolToInt(run.GameOver),
		run.JournalPath,
	)
	return err
}

// RecentRuns lists up to limit runs, most recently finished first.
func (s *SQLiteIndex) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, seed, settings_digest,
			ticks, foos, bars, foobars, money, robots, game_over, journal_path
		FROM runs
		ORDER BY finished_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		var gameOver int
		if err := rows.Scan(&run.ID, &started, &finished, &run.Seed,
			&run.SettingsDigest, &run.Ticks, &run.Foos, &run.Bars,
			&run.Foobars, &run.Money, &run.Robots, &gameOver,
			&run.JournalPath); err != nil {
			return nil, err
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, started)
		run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		run.GameOver = gameOver != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun looks a run up by id.
func (s *SQLiteIndex) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, seed, settings_digest,
			ticks, foos, bars, foobars, money, robots, game_over, journal_path
		FROM runs WHERE id = ?`, id)

	var run Run
	var started, finished string
	var gameOver int
	if err := row.Scan(&run.ID, &started, &finished, &run.Seed,
		&run.SettingsDigest, &run.Ticks, &run.Foos, &run.Bars,
		&run.Foobars, &run.Money, &run.Robots, &gameOver,
		&run.JournalPath); err != nil {
		return Run{}, err
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	run.GameOver = gameOver != 0
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
