package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/layouteval/agent/policy"
	"github.com/samuelfneumann/layouteval/experiment"
	"github.com/samuelfneumann/layouteval/experiment/tracker"
	"github.com/samuelfneumann/layouteval/experiment/trackers"
	"github.com/samuelfneumann/layouteval/render"
	"github.com/samuelfneumann/layouteval/report"
	"github.com/samuelfneumann/layouteval/storage"
	"github.com/samuelfneumann/layouteval/utils/progressbar"
)

// evaluateFlags holds the flags of the evaluate command
type evaluateFlags struct {
	config      string
	layouts     []string
	checkpoints string
	out         string
	mode        string
	runs        int
	maxSteps    int
	seed        uint64
	workers     int
	failFast    bool
	agentType   string
	hidden      []int
	activation  string
	gifs        bool
	createDirs  bool
	chart       bool
	track       bool
	color       bool
	progress    bool
	store       string
	storePath   string
}

func newEvaluateCmd() *cobra.Command {
	cmd, _ := evaluateCommand()
	return cmd
}

// evaluateCommand returns the evaluate command and the flags it binds
func evaluateCommand() (*cobra.Command, *evaluateFlags) {
	f := &evaluateFlags{}

	cmd := &cobra.Command{
		Use:   "evaluate [layouts...]",
		Short: "Evaluate trained agents on one or more layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.layouts = append(f.layouts, args...)
			return runEvaluate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.config, "config", "c", "", "JSON sweep configuration file")
	flags.StringSliceVarP(&f.layouts, "layouts", "l", nil, "layouts to evaluate")
	flags.StringVar(&f.checkpoints, "checkpoints",
		envDefault(checkpointsEnv, "checkpoints"), "root directory of parameter sets")
	flags.StringVarP(&f.out, "out", "o", envDefault(outEnv, "out"),
		"output directory")
	flags.StringVarP(&f.mode, "mode", "m", string(policy.Greedy),
		"action selection: greedy or sampled")
	flags.IntVarP(&f.runs, "runs", "n", experiment.DefaultNumRuns,
		"episodes per layout")
	flags.IntVar(&f.maxSteps, "max-steps", experiment.DefaultMaxSteps,
		"maximum steps per episode")
	flags.Uint64Var(&f.seed, "seed", 0, "seed for sampled action selection")
	flags.IntVarP(&f.workers, "workers", "w", 1, "layouts evaluated concurrently")
	flags.BoolVar(&f.failFast, "fail-fast", false, "stop at the first failed layout")
	flags.StringVar(&f.agentType, "agent", "linear", "agent architecture: linear or mlp")
	flags.IntSliceVar(&f.hidden, "hidden", nil, "hidden layer sizes of mlp agents")
	flags.StringVar(&f.activation, "activation", "", "hidden activation of mlp agents")
	flags.BoolVar(&f.gifs, "gif", true, "save a GIF of the first episode on each layout")
	flags.BoolVar(&f.createDirs, "create-dirs", false,
		"create missing output directories")
	flags.BoolVar(&f.chart, "chart", false, "save an HTML chart of the results")
	flags.BoolVar(&f.track, "track", false, "save per-episode returns and lengths")
	flags.BoolVar(&f.color, "color", true, "colour the results table")
	flags.BoolVar(&f.progress, "progress", true, "show a progress bar")
	flags.StringVar(&f.store, "store", "", "store results: memory or sqlite")
	flags.StringVar(&f.storePath, "store-path", "", "path of the sqlite database")

	return cmd, f
}

// sweepConfig builds the configuration of the sweep from the config
// file and any flags that were set explicitly
func (f *evaluateFlags) sweepConfig(cmd *cobra.Command) (sweepConfig, error) {
	c, err := loadSweepConfig(f.config)
	if err != nil {
		return sweepConfig{}, err
	}

	flags := cmd.Flags()
	if len(f.layouts) > 0 {
		c.Layouts = f.layouts
	}
	if flags.Changed("checkpoints") || c.Checkpoints == "" {
		c.Checkpoints = f.checkpoints
	}
	if flags.Changed("mode") || f.config == "" {
		m, err := policy.ParseMode(f.mode)
		if err != nil {
			return sweepConfig{}, fmt.Errorf("%w: %v", experiment.ErrConfig, err)
		}
		c.Experiment.Mode = m
	}
	if flags.Changed("runs") {
		c.Experiment.NumRuns = f.runs
	}
	if flags.Changed("max-steps") {
		c.Experiment.MaxSteps = f.maxSteps
	}
	if flags.Changed("seed") {
		c.Experiment.Seed = f.seed
	}
	if flags.Changed("workers") {
		c.Experiment.Workers = f.workers
	}
	if flags.Changed("fail-fast") {
		c.Experiment.FailFast = f.failFast
	}
	if flags.Changed("agent") || f.config == "" {
		c.Agent.Type = agentType(f.agentType)
	}
	if flags.Changed("hidden") {
		c.Agent.Hidden = f.hidden
	}
	if flags.Changed("activation") {
		c.Agent.Activation = f.activation
	}
	if flags.Changed("gif") || f.config == "" {
		c.Experiment.CaptureFirstRun = f.gifs
	}

	return c, c.validate()
}

func runEvaluate(cmd *cobra.Command, f *evaluateFlags) error {
	c, err := f.sweepConfig(cmd)
	if err != nil {
		return err
	}
	logger := slog.Default()

	// Check the destination before spending time on the sweep
	if f.gifs || f.chart || f.track {
		if err := outputDir(f.out, f.createDirs); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := []experiment.Option{experiment.WithLogger(logger)}
	if f.track {
		opts = append(opts, experiment.WithTrackers(
			episodeTrackers(f.out, f.createDirs)))
	}

	var bar *progressbar.ManualProgressBar
	if f.progress {
		bar = progressbar.NewManualProgressBar(cmd.ErrOrStderr(), 40,
			len(c.Layouts))
		bar.Display()
		opts = append(opts, experiment.WithLayoutFunc(
			func(r experiment.LayoutResult) {
				bar.Increment(r.Layout)
			}))
	}

	eval, err := experiment.NewEvaluator(c.Experiment,
		experiment.CheckpointAgents(c.Checkpoints, c.Agent),
		c.Environment.Factory(), opts...)
	if err != nil {
		return err
	}

	results, sweepErr := eval.EvaluateSweep(ctx, c.Layouts)
	if bar != nil {
		bar.Close()
	}

	if err := report.WriteTable(cmd.OutOrStdout(), c.Experiment.Mode, results,
		f.color); err != nil {
		return err
	}

	if err := saveOutputs(ctx, f, c, results); err != nil {
		return err
	}

	if sweepErr != nil {
		return sweepErr
	}
	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("evaluate: one or more layouts failed")
		}
	}
	return nil
}

// saveOutputs saves the GIFs, chart and stored record of a sweep
func saveOutputs(ctx context.Context, f *evaluateFlags, c sweepConfig,
	results []experiment.LayoutResult) error {
	logger := slog.Default()

	if f.gifs {
		gif := render.NewGIF(f.createDirs)
		for _, r := range results {
			if r.Result == nil || len(r.Result.Frames) == 0 {
				continue
			}
			layoutDir := filepath.Join(f.out, r.Layout)
			if err := os.MkdirAll(layoutDir, 0o755); err != nil {
				return fmt.Errorf("evaluate: %w: %v", render.ErrDestination, err)
			}
			path := filepath.Join(layoutDir,
				fmt.Sprintf("%v.gif", c.Experiment.Mode))
			if err := gif.Save(r.Result.Frames, path); err != nil {
				return fmt.Errorf("evaluate: layout %v: %w", r.Layout, err)
			}
			logger.Info("saved replay", "layout", r.Layout, "path", path)
		}
	}

	if f.chart {
		if err := outputDir(f.out, f.createDirs); err != nil {
			return err
		}
		path := filepath.Join(f.out, fmt.Sprintf("%v.html", c.Experiment.Mode))
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("evaluate: could not create chart: %v", err)
		}
		defer file.Close()

		if err := report.WriteChart(file, "Layout evaluation",
			c.Experiment.Mode, results); err != nil {
			return err
		}
		logger.Info("saved chart", "path", path)
	}

	if f.store != "" {
		if err := storeSweep(ctx, f.store, f.storePath, c.Experiment,
			results); err != nil {
			return err
		}
	}
	return nil
}

// storeSweep saves the results of a sweep to a Store
func storeSweep(ctx context.Context, kind, path string, c experiment.Config,
	results []experiment.LayoutResult) error {
	store, err := storage.NewStore(kind, path)
	if err != nil {
		return fmt.Errorf("evaluate: %v", err)
	}
	defer storage.Close(store)

	// Results are stored even if the sweep was interrupted
	ctx = context.WithoutCancel(ctx)
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("evaluate: could not initialize store: %v", err)
	}

	record := storage.NewSweepRecord(c, results)
	if err := store.SaveSweep(ctx, record); err != nil {
		return fmt.Errorf("evaluate: could not store sweep: %v", err)
	}
	slog.Default().Info("stored sweep", "id", record.ID, "store", kind)
	return nil
}

// episodeTrackers returns a TrackerFactory saving the return and length
// of each episode under dir
func episodeTrackers(dir string, createDirs bool) experiment.TrackerFactory {
	return func(layout string) ([]tracker.Tracker, error) {
		if err := outputDir(dir, createDirs); err != nil {
			return nil, err
		}
		layoutDir := filepath.Join(dir, layout)
		if err := os.MkdirAll(layoutDir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", render.ErrDestination, err)
		}
		return []tracker.Tracker{
			trackers.NewReturn(filepath.Join(layoutDir, "returns.gob")),
			trackers.NewEpisodeLength(filepath.Join(layoutDir, "lengths.gob")),
		}, nil
	}
}

// outputDir returns render.ErrDestination if dir does not exist and
// createDirs is false
func outputDir(dir string, createDirs bool) error {
	if createDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("evaluate: %w: %v", render.ErrDestination, err)
		}
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("evaluate: %w: %v", render.ErrDestination, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("evaluate: %w: %v is not a directory",
			render.ErrDestination, dir)
	}
	return nil
}
