// Package batch runs a list of scripted trace generations from a YAML
// scenario file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/config"
	"github.com/san-kum/algoviz/internal/input"
	"github.com/san-kum/algoviz/internal/logging"
	"github.com/san-kum/algoviz/internal/storage"
	"github.com/san-kum/algoviz/internal/trace"
)

var ErrEmptyScenario = errors.New("batch: scenario has no entries")

type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Entries     []Entry `yaml:"entries"`
}

// Entry names one generation. Data wins over Preset, which wins over Input.
type Entry struct {
	Name      string `yaml:"name"`
	Algorithm string `yaml:"algorithm"`
	Input     string `yaml:"input"`
	Data      []int  `yaml:"data"`
	Preset    string `yaml:"preset"`
	Save      bool   `yaml:"save"`
}

func (e Entry) resolve() ([]int, error) {
	switch {
	case e.Data != nil:
		return e.Data, nil
	case e.Preset != "":
		p, ok := config.GetPreset(e.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", e.Preset)
		}
		return p, nil
	}
	return input.Parse(e.Input), nil
}

type Result struct {
	Entry Entry
	Input []int
	Steps trace.Trace
	Stats trace.Stats
	RunID string
	Err   error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("batch: parse scenario: %w", err)
	}
	if len(sc.Entries) == 0 {
		return nil, ErrEmptyScenario
	}
	for i := range sc.Entries {
		if sc.Entries[i].Name == "" {
			sc.Entries[i].Name = fmt.Sprintf("entry-%d", i+1)
		}
		if sc.Entries[i].Algorithm == "" {
			sc.Entries[i].Algorithm = config.DefaultAlgorithm
		}
	}
	return &sc, nil
}

type Runner struct {
	registry *algo.Registry
	store    storage.Store
	logger   *slog.Logger
	workers  int
}

// NewRunner builds a runner. store may be nil, in which case Save entries
// are generated but not persisted. workers <= 0 uses GOMAXPROCS.
func NewRunner(store storage.Store, workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{
		registry: algo.NewRegistry(),
		store:    store,
		logger:   logging.OrDiscard(logger),
		workers:  workers,
	}
}

// Run generates every entry concurrently. Results come back in entry order;
// a failing entry records its error and does not stop the others. The
// returned error is the context error, if any.
func (r *Runner) Run(ctx context.Context, sc *Scenario) ([]Result, error) {
	results := make([]Result, len(sc.Entries))
	sem := make(chan struct{}, r.workers)

	var wg sync.WaitGroup
	for i, e := range sc.Entries {
		wg.Add(1)
		go func(idx int, e Entry) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = Result{Entry: e, Err: ctx.Err()}
				return
			}
			results[idx] = r.runEntry(ctx, e)
		}(i, e)
	}
	wg.Wait()

	for _, res := range results {
		if res.Err != nil {
			r.logger.Warn("entry failed", "scenario", sc.Name, "entry", res.Entry.Name, "err", res.Err)
		}
	}
	return results, ctx.Err()
}

func (r *Runner) runEntry(ctx context.Context, e Entry) Result {
	res := Result{Entry: e}

	gen, err := r.registry.Get(e.Algorithm)
	if err != nil {
		res.Err = err
		return res
	}
	data, err := e.resolve()
	if err != nil {
		res.Err = err
		return res
	}
	res.Input = data
	res.Steps = gen(data)
	res.Stats = trace.Summarize(res.Steps)

	if err := trace.Validate(res.Steps, data); err != nil {
		res.Err = err
		return res
	}

	if e.Save && r.store != nil {
		a, _ := algo.ParseAlgorithm(e.Algorithm)
		id, err := r.store.Save(ctx, storage.NewRun(e.Name, a, data, res.Steps))
		if err != nil {
			res.Err = fmt.Errorf("save: %w", err)
			return res
		}
		res.RunID = id
	}
	r.logger.Debug("entry done", "entry", e.Name, "steps", res.Stats.Steps, "run", res.RunID)
	return res
}
