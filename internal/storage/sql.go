package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/logging"
	"github.com/san-kum/algoviz/internal/trace"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	algorithm   TEXT NOT NULL,
	input       TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	steps       INTEGER NOT NULL,
	comparisons INTEGER NOT NULL,
	swaps       INTEGER NOT NULL,
	passes      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS steps (
	run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx       INTEGER NOT NULL,
	array     TEXT NOT NULL,
	comparing TEXT NOT NULL,
	swapped   TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// SQLStore keeps runs in one SQLite database.
type SQLStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLStore opens or creates the database at path. ":memory:" is allowed.
func OpenSQLStore(path string, logger *slog.Logger) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("storage: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	// pragmas are per connection; a single connection keeps them applied and
	// keeps ":memory:" one database.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: schema: %w", err)
	}
	return &SQLStore{db: db, logger: logging.OrDiscard(logger)}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Save(ctx context.Context, run *Run) (string, error) {
	prepare(run)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, name, algorithm, input, created_at, steps, comparisons, swaps, passes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, string(run.Algorithm), trace.JoinInts(run.Input), run.Timestamp.UnixNano(),
		run.Stats.Steps, run.Stats.Comparisons, run.Stats.Swaps, run.Stats.Passes)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO steps (run_id, idx, array, comparing, swapped) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, st := range run.Steps {
		row := trace.EncodeRow(st)
		if _, err := stmt.ExecContext(ctx, run.ID, i, row[0], row[1], row[2]); err != nil {
			return "", fmt.Errorf("insert step %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	s.logger.Debug("run saved", "id", run.ID, "steps", len(run.Steps))
	return run.ID, nil
}

const selectMetadata = `SELECT id, name, algorithm, input, created_at, steps, comparisons, swaps, passes FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMetadata(row rowScanner) (Metadata, error) {
	var (
		meta      Metadata
		algorithm string
		in        string
		created   int64
	)
	err := row.Scan(&meta.ID, &meta.Name, &algorithm, &in, &created,
		&meta.Stats.Steps, &meta.Stats.Comparisons, &meta.Stats.Swaps, &meta.Stats.Passes)
	if err != nil {
		return Metadata{}, err
	}
	meta.Algorithm = algo.Algorithm(algorithm)
	meta.Timestamp = time.Unix(0, created).UTC()
	if meta.Input, err = trace.SplitInts(in); err != nil {
		return Metadata{}, fmt.Errorf("run %s input: %w", meta.ID, err)
	}
	return meta, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Metadata, error) {
	rows, err := s.db.QueryContext(ctx, selectMetadata+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Metadata, 0)
	for rows.Next() {
		meta, err := scanMetadata(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *SQLStore) Load(ctx context.Context, id string) (*Run, error) {
	meta, err := scanMetadata(s.db.QueryRowContext(ctx, selectMetadata+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT array, comparing, swapped FROM steps WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := make(trace.Trace, 0, meta.Stats.Steps)
	for rows.Next() {
		var a, c, sw string
		if err := rows.Scan(&a, &c, &sw); err != nil {
			return nil, err
		}
		st, err := trace.DecodeRow(a, c, sw)
		if err != nil {
			return nil, fmt.Errorf("run %s step %d: %w", id, len(steps), err)
		}
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &Run{Metadata: meta, Steps: steps}, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
