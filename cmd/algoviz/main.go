package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/config"
	"github.com/san-kum/algoviz/internal/input"
	"github.com/san-kum/algoviz/internal/logging"
	"github.com/san-kum/algoviz/internal/playback"
	"github.com/san-kum/algoviz/internal/storage"
	"github.com/san-kum/algoviz/internal/tui"
)

var (
	configFile string
	dataDir    string
	storeKind  string
	logLevel   string
	logJSON    bool

	inputStr  string
	preset    string
	algorithm string
	randomN   int
	seed      int64
	speed     time.Duration
	theme     string

	runName string
	format  string
	outFile string
	stepIdx int
	width   int
	height  int
	delay   int
	workers int
	addr    string
	force   bool

	plotWidth  int
	plotHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "algoviz",
		Short:         "step-by-step algorithm visualizer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          playCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&dataDir, "data", "", "data directory for saved runs")
	pf.StringVar(&storeKind, "storage", "", "storage backend: file or sqlite")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")

	addInputFlags(rootCmd)
	rootCmd.Flags().DurationVar(&speed, "speed", 0, "delay between steps")
	rootCmd.Flags().StringVar(&theme, "theme", "", "player theme ("+strings.Join(tui.ThemeNames(), ", ")+")")

	playC := &cobra.Command{
		Use:   "play",
		Short: "play a trace in the terminal",
		RunE:  playCmd,
	}
	addInputFlags(playC)
	playC.Flags().DurationVar(&speed, "speed", 0, "delay between steps")
	playC.Flags().StringVar(&theme, "theme", "", "player theme")

	stepsC := &cobra.Command{
		Use:   "steps [run_id]",
		Short: "print every step of a trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  stepsCmd,
	}
	addInputFlags(stepsC)

	plotC := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot inversions remaining per step",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotCmd,
	}
	addInputFlags(plotC)
	plotC.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotC.Flags().IntVar(&plotHeight, "height", 15, "plot height")

	statsC := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "summarize a trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  statsCmd,
	}
	addInputFlags(statsC)

	saveC := &cobra.Command{
		Use:   "save",
		Short: "generate a trace and store it as a run",
		RunE:  saveCmd,
	}
	addInputFlags(saveC)
	saveC.Flags().StringVar(&runName, "name", "", "run name")

	listC := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listCmd,
	}

	showC := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showCmd,
	}

	deleteC := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteCmd,
	}

	exportC := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json, csv, svg, gif or html",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCmd,
	}
	addInputFlags(exportC)
	exportC.Flags().StringVar(&format, "format", "json", "output format")
	exportC.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportC.Flags().IntVar(&stepIdx, "step", -1, "step drawn by svg; negative counts from the end")
	exportC.Flags().IntVar(&width, "width", 0, "image width")
	exportC.Flags().IntVar(&height, "height", 0, "image height")
	exportC.Flags().IntVar(&delay, "delay", 0, "gif frame delay in 1/100 s")

	batchC := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "generate every entry of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  batchCmd,
	}
	batchC.Flags().IntVar(&workers, "workers", 0, "concurrent entries (default GOMAXPROCS)")

	serveC := &cobra.Command{
		Use:   "serve",
		Short: "serve the HTTP API",
		RunE:  serveCmd,
	}
	serveC.Flags().StringVar(&addr, "addr", "", "listen address")

	presetsC := &cobra.Command{
		Use:   "presets",
		Short: "list input presets",
		Run:   presetsCmd,
	}

	algorithmsC := &cobra.Command{
		Use:   "algorithms",
		Short: "list algorithms",
		Run:   algorithmsCmd,
	}

	configC := &cobra.Command{
		Use:   "config",
		Short: "manage the config file",
	}
	configInitC := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  configInitCmd,
	}
	configInitC.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configShowC := &cobra.Command{
		Use:   "show",
		Short: "print the effective config",
		RunE:  configShowCmd,
	}
	configC.AddCommand(configInitC, configShowC)

	rootCmd.AddCommand(playC, stepsC, plotC, statsC, saveC, listC, showC, deleteC,
		exportC, batchC, serveC, presetsC, algorithmsC, configC)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&inputStr, "input", "i", "", "comma-separated integers")
	f.StringVar(&preset, "preset", "", "named input ("+strings.Join(config.ListPresets(), ", ")+")")
	f.StringVarP(&algorithm, "algorithm", "a", "", "algorithm ("+strings.Join(algorithmNames(), ", ")+")")
	f.IntVar(&randomN, "random", 0, "use n random values instead of --input")
	f.Int64Var(&seed, "seed", 0, "seed for --random (default: current time)")
}

func algorithmNames() []string {
	names := make([]string, len(algo.All))
	for i, a := range algo.All {
		names[i] = string(a)
	}
	return names
}

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if storeKind != "" {
		cfg.Storage = storeKind
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	if changed("input") {
		cfg.Input = inputStr
		cfg.Preset = ""
	}
	if changed("preset") {
		cfg.Preset = preset
	}
	if changed("algorithm") {
		cfg.Algorithm = algorithm
	}
	if changed("speed") {
		cfg.Speed = speed
	}
	if changed("theme") {
		cfg.Theme = theme
	}
	if changed("addr") {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level, cfg.Log.JSON, os.Stderr), nil
}

func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openStore(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	return storage.Open(cfg.Storage, cfg.DataDir, logger)
}

// inputData resolves the array to visualize: --random, then the preset or
// input string from the config.
func inputData(cmd *cobra.Command, cfg *config.Config) []int {
	if randomN > 0 {
		s := seed
		if f := cmd.Flags().Lookup("seed"); f == nil || !f.Changed {
			s = time.Now().UnixNano()
		}
		return input.Random(randomN, 99, s)
	}
	return cfg.Data()
}

// resolveRun loads the run named by args, or generates one from the input
// flags when args is empty.
func resolveRun(ctx context.Context, cmd *cobra.Command, args []string) (*storage.Run, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		store, err := openStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx, args[0])
	}

	a, _ := algo.ParseAlgorithm(cfg.Algorithm)
	data := inputData(cmd, cfg)
	steps := algo.Generate(data, a)
	logger.Debug("trace generated", "algorithm", a, "len", len(data), "steps", len(steps))
	return storage.NewRun("", a, data, steps), nil
}

func playCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	a, _ := algo.ParseAlgorithm(cfg.Algorithm)
	c := playback.New(inputData(cmd, cfg), a,
		playback.WithSpeed(cfg.Speed),
		playback.WithLogger(logger))
	return tui.Run(c, cfg.Theme)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func presetsCmd(cmd *cobra.Command, args []string) {
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		fmt.Printf("%-12s %s\n", name, input.Format(p))
	}
}

func algorithmsCmd(cmd *cobra.Command, args []string) {
	for _, info := range algo.NewRegistry().List() {
		status := "ready"
		if !info.Implemented {
			status = "planned"
		}
		fmt.Printf("%-10s %-18s %-8s %s\n", info.ID, info.Label, status, info.Description)
	}
}

func configInitCmd(cmd *cobra.Command, args []string) error {
	path := "algoviz.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func configShowCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("algorithm: %s\n", cfg.Algorithm)
	if cfg.Preset != "" {
		fmt.Printf("preset:    %s\n", cfg.Preset)
	}
	fmt.Printf("input:     %s\n", input.Format(cfg.Data()))
	fmt.Printf("speed:     %s\n", cfg.Speed)
	fmt.Printf("theme:     %s\n", cfg.Theme)
	fmt.Printf("storage:   %s (%s)\n", cfg.Storage, cfg.DataDir)
	fmt.Printf("server:    %s (max input %d)\n", cfg.Server.Addr, cfg.Server.MaxInput)
	fmt.Printf("log:       %s json=%s\n", cfg.Log.Level, strconv.FormatBool(cfg.Log.JSON))
	return nil
}
