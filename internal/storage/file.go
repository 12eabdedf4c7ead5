package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/algoviz/internal/logging"
	"github.com/san-kum/algoviz/internal/trace"
)

const (
	metadataFile = "metadata.json"
	stepsFile    = "steps.csv"
)

var stepsHeader = []string{"index", "array", "comparing", "swapped"}

// FileStore keeps one directory per run under baseDir.
type FileStore struct {
	baseDir string
	logger  *slog.Logger
}

func NewFileStore(baseDir string, logger *slog.Logger) *FileStore {
	return &FileStore{baseDir: baseDir, logger: logging.OrDiscard(logger)}
}

func (s *FileStore) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) Save(ctx context.Context, run *Run) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	prepare(run)
	runDir, err := s.runDir(run.ID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), run.Metadata); err != nil {
		return "", err
	}
	if err := writeSteps(filepath.Join(runDir, stepsFile), run.Steps); err != nil {
		return "", err
	}

	s.logger.Debug("run saved", "id", run.ID, "dir", runDir, "steps", len(run.Steps))
	return run.ID, nil
}

func writeMetadata(path string, meta Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeSteps(path string, steps trace.Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(stepsHeader); err != nil {
		return err
	}
	for i, st := range steps {
		row := trace.EncodeRow(st)
		if err := w.Write([]string{strconv.Itoa(i), row[0], row[1], row[2]}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *FileStore) List(ctx context.Context) ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	runs := make([]Metadata, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		meta, err := readMetadata(filepath.Join(s.baseDir, entry.Name(), metadataFile))
		if err != nil {
			s.logger.Warn("skipping run directory", "dir", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, meta)
	}
	sortNewestFirst(runs)
	return runs, nil
}

func (s *FileStore) Load(ctx context.Context, id string) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runDir, err := s.runDir(id)
	if err != nil {
		return nil, err
	}

	meta, err := readMetadata(filepath.Join(runDir, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	steps, err := readSteps(filepath.Join(runDir, stepsFile))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return &Run{Metadata: meta, Steps: steps}, nil
}

func readMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, err
	}
	if meta.Input == nil {
		meta.Input = []int{}
	}
	return meta, nil
}

func readSteps(path string) (trace.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(stepsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return trace.Trace{}, nil
	}

	steps := make(trace.Trace, 0, len(records)-1)
	for i, rec := range records[1:] {
		if idx, err := strconv.Atoi(rec[0]); err != nil || idx != i {
			return nil, fmt.Errorf("row %d: bad index %q", i+1, rec[0])
		}
		st, err := trace.DecodeRow(rec[1], rec[2], rec[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runDir, err := s.runDir(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(runDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	return os.RemoveAll(runDir)
}

// runDir rejects ids that would escape baseDir.
func (s *FileStore) runDir(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return filepath.Join(s.baseDir, id), nil
}
