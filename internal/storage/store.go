// Package storage persists generated traces as runs.
//
// Two backends share the [Store] interface: a directory of metadata.json and
// steps.csv pairs, and a single SQLite database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/trace"
)

var ErrNotFound = errors.New("storage: run not found")

type Metadata struct {
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	Algorithm algo.Algorithm `json:"algorithm"`
	Input     []int          `json:"input"`
	Timestamp time.Time      `json:"timestamp"`
	Stats     trace.Stats    `json:"stats"`
}

type Run struct {
	Metadata
	Steps trace.Trace `json:"steps"`
}

// NewRun wraps a generated trace with its input and summary.
func NewRun(name string, a algo.Algorithm, input []int, steps trace.Trace) *Run {
	in := slices.Clone(input)
	if in == nil {
		in = []int{}
	}
	return &Run{
		Metadata: Metadata{
			Name:      name,
			Algorithm: a,
			Input:     in,
			Stats:     trace.Summarize(steps),
		},
		Steps: steps,
	}
}

type Store interface {
	// Save assigns an ID and timestamp when they are unset and returns the ID.
	Save(ctx context.Context, run *Run) (string, error)
	Load(ctx context.Context, id string) (*Run, error)
	// List returns run metadata, newest first.
	List(ctx context.Context) ([]Metadata, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"

	sqliteFile = "algoviz.db"
)

// Open returns the backend named by driver rooted at dir.
func Open(driver, dir string, logger *slog.Logger) (Store, error) {
	switch driver {
	case DriverFile, "":
		fs := NewFileStore(dir, logger)
		if err := fs.Init(); err != nil {
			return nil, err
		}
		return fs, nil
	case DriverSQLite:
		return OpenSQLStore(filepath.Join(dir, sqliteFile), logger)
	}
	return nil, fmt.Errorf("storage: unknown driver %q", driver)
}

func prepare(run *Run) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	if run.Input == nil {
		run.Input = []int{}
	}
	run.Stats = trace.Summarize(run.Steps)
}

func sortNewestFirst(runs []Metadata) {
	slices.SortStableFunc(runs, func(a, b Metadata) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
