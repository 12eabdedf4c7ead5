package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/san-kum/algoviz/internal/batch"
	"github.com/san-kum/algoviz/internal/export"
	"github.com/san-kum/algoviz/internal/input"
	"github.com/san-kum/algoviz/internal/server"
	"github.com/san-kum/algoviz/internal/storage"
	"github.com/san-kum/algoviz/internal/trace"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func markers(xs []int) string {
	if len(xs) == 0 {
		return ""
	}
	return input.Format(xs)
}

func printSteps(w io.Writer, steps trace.Trace) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "ARRAY", "COMPARING", "SWAPPED"})
	for i, s := range steps {
		t.AppendRow(table.Row{i, input.Format(s.Array), markers(s.Comparing), markers(s.Swapped)})
	}
	t.Render()
}

func printStats(w io.Writer, run *storage.Run) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"algorithm", run.Algorithm},
		{"input", input.Format(run.Input)},
		{"length", len(run.Input)},
		{"steps", run.Stats.Steps},
		{"comparisons", run.Stats.Comparisons},
		{"swaps", run.Stats.Swaps},
		{"passes", run.Stats.Passes},
		{"inversions", trace.Inversions(run.Input)},
	})
	if n := len(run.Steps); n > 0 {
		t.AppendRow(table.Row{"result", input.Format(run.Steps[n-1].Array)})
	}
	t.Render()
}

func stepsCmd(cmd *cobra.Command, args []string) error {
	run, err := resolveRun(cmd.Context(), cmd, args)
	if err != nil {
		return err
	}
	printSteps(os.Stdout, run.Steps)
	return nil
}

func statsCmd(cmd *cobra.Command, args []string) error {
	run, err := resolveRun(cmd.Context(), cmd, args)
	if err != nil {
		return err
	}
	printStats(os.Stdout, run)
	return nil
}

func plotCmd(cmd *cobra.Command, args []string) error {
	run, err := resolveRun(cmd.Context(), cmd, args)
	if err != nil {
		return err
	}
	series := trace.InversionSeries(run.Steps)
	if len(series) < 2 {
		fmt.Println("not enough steps to plot")
		return nil
	}
	graph := asciigraph.Plot(series,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(fmt.Sprintf("inversions remaining (%s, %d steps)", run.Algorithm, len(run.Steps))),
	)
	fmt.Println(graph)
	return nil
}

func saveCmd(cmd *cobra.Command, args []string) error {
	run, err := resolveRun(cmd.Context(), cmd, nil)
	if err != nil {
		return err
	}
	run.Name = runName

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Save(cmd.Context(), run)
	if err != nil {
		return err
	}
	fmt.Printf("saved run %s (%d steps) to %s\n", id, len(run.Steps), cfg.DataDir)
	return nil
}

func listCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	t := newTable(os.Stdout)
	t.AppendHeader(table.Row{"ID", "NAME", "ALGORITHM", "LEN", "STEPS", "SWAPS", "SAVED"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.ID, r.Name, r.Algorithm, len(r.Input), r.Stats.Steps, r.Stats.Swaps, humanize.Time(r.Timestamp)})
	}
	t.Render()
	return nil
}

func showCmd(cmd *cobra.Command, args []string) error {
	run, err := resolveRun(cmd.Context(), cmd, args)
	if err != nil {
		return err
	}
	fmt.Printf("run %s", run.ID)
	if run.Name != "" {
		fmt.Printf(" (%s)", run.Name)
	}
	fmt.Printf(", saved %s\n", humanize.Time(run.Timestamp))
	printStats(os.Stdout, run)
	printSteps(os.Stdout, run.Steps)
	return nil
}

func deleteCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted run %s\n", args[0])
	return nil
}

func exportCmd(cmd *cobra.Command, args []string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	run, err := resolveRun(cmd.Context(), cmd, args)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		file, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer file.Close()
		buf := bufio.NewWriter(file)
		defer buf.Flush()
		w = buf
	}

	opts := export.Options{Width: width, Height: height, Step: stepIdx, FrameDelay: delay}
	if err := export.Write(w, f, run, opts); err != nil {
		return fmt.Errorf("export %s: %w", f, err)
	}
	if outFile != "" {
		fmt.Fprintf(os.Stderr, "wrote %s\n", outFile)
	}
	return nil
}

func batchCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	sc, err := batch.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var store storage.Store
	if scenarioSaves(sc) {
		store, err = openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := batch.NewRunner(store, workers, logger).Run(ctx, sc)
	if err != nil {
		return err
	}

	if sc.Name != "" {
		fmt.Printf("scenario %s: %d entries\n", sc.Name, len(results))
	}
	t := newTable(os.Stdout)
	t.AppendHeader(table.Row{"NAME", "ALGORITHM", "LEN", "STEPS", "COMPARISONS", "SWAPS", "RUN", "ERROR"})
	failed := 0
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
			failed++
		}
		t.AppendRow(table.Row{r.Entry.Name, r.Entry.Algorithm, len(r.Input), r.Stats.Steps,
			r.Stats.Comparisons, r.Stats.Swaps, r.RunID, errText})
	}
	t.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d entries failed", failed, len(results))
	}
	return nil
}

func scenarioSaves(sc *batch.Scenario) bool {
	for _, e := range sc.Entries {
		if e.Save {
			return true
		}
	}
	return false
}

func serveCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(store, logger,
		server.WithDefaultSpeed(cfg.Speed),
		server.WithMaxInputLen(cfg.Server.MaxInput))
	defer srv.Close()

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("starting server", "storage", cfg.Storage, "data", cfg.DataDir)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
