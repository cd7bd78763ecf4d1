package experiment

import (
	"context"
	"fmt"
	"image"

	"github.com/samuelfneumann/layouteval/agent"
	"github.com/samuelfneumann/layouteval/agent/policy"
	"github.com/samuelfneumann/layouteval/experiment/tracker"
	"github.com/samuelfneumann/layouteval/utils/floatutils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AggregateResult summarizes the episodes run on a single layout
type AggregateResult struct {
	Layout string
	Mode   policy.Mode

	// Rewards holds the total reward of each episode, in run order
	Rewards []float64

	Mean   float64
	StdDev float64 // Population standard deviation
	Min    float64
	Max    float64

	// MeanLength is the mean number of steps per episode
	MeanLength float64

	// Truncated counts the episodes cut off by the step bound
	Truncated int

	// Frames holds the frames of the first episode, if captured
	Frames []image.Image
}

// Summarize computes the statistics of a set of episode rewards. The
// standard deviation is the population standard deviation.
func Summarize(rewards []float64) (mean, std, min, max float64) {
	if len(rewards) == 0 {
		return 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(rewards, nil)
	min, max = floats.Min(rewards), floats.Max(rewards)

	// Rounding can push the mean of equal rewards outside their range
	mean = floatutils.Clip(mean, min, max)
	return mean, std, min, max
}

// EvaluateLayout runs Config().NumRuns episodes on a single layout and
// aggregates their rewards. A single environment and a single agent are
// created for the layout and used for all episodes, which are run
// sequentially. Any error aborts the layout and no partial result is
// returned.
func (e *Evaluator) EvaluateLayout(ctx context.Context,
	layout string) (AggregateResult, error) {
	const op = "evaluateLayout"
	c := e.config
	logger := e.logger.With("layout", layout, "mode", c.Mode)

	if err := ctx.Err(); err != nil {
		return AggregateResult{}, layoutErr(op, layout, cancelled(op, err))
	}

	environment, err := e.envs(layout)
	if err != nil {
		return AggregateResult{}, layoutErr(op, layout,
			fmt.Errorf("could not create environment: %w", err))
	}

	ag, err := e.agents(layout, environment.ObservationDim(),
		environment.ActionCount())
	if err != nil {
		return AggregateResult{}, layoutErr(op, layout,
			fmt.Errorf("could not create agent: %w", err))
	}
	defer func() {
		if err := agent.Close(ag); err != nil {
			logger.Warn("could not close agent", "error", err)
		}
	}()

	// Check dimensions before any episode is started
	if err := checkDims(ag, environment); err != nil {
		return AggregateResult{}, layoutErr(op, layout, err)
	}

	selector, err := policy.New(c.Mode, e.layoutSeed(layout))
	if err != nil {
		return AggregateResult{}, layoutErr(op, layout,
			fmt.Errorf("%w: %v", ErrConfig, err))
	}

	var trackers []tracker.Tracker
	if e.trackers != nil {
		trackers, err = e.trackers(layout)
		if err != nil {
			return AggregateResult{}, layoutErr(op, layout,
				fmt.Errorf("could not create trackers: %w", err))
		}
	}
	runner := NewRunner(c.MaxSteps, logger, trackers...)

	logger.Info("evaluating layout", "runs", c.NumRuns)

	result := AggregateResult{
		Layout:  layout,
		Mode:    c.Mode,
		Rewards: make([]float64, c.NumRuns),
	}
	var totalSteps int
	for run := 0; run < c.NumRuns; run++ {
		capture := run == 0 && c.CaptureFirstRun

		episode, err := runner.RunEpisode(ctx, ag, environment, selector,
			capture)
		if err != nil {
			return AggregateResult{}, layoutErr(op, layout,
				fmt.Errorf("run %d: %w", run, err))
		}

		result.Rewards[run] = episode.Reward
		totalSteps += episode.Steps
		if episode.Truncated {
			result.Truncated++
		}
		if capture {
			result.Frames = episode.Frames
		}
	}

	for _, tr := range trackers {
		if err := tr.Save(); err != nil {
			return AggregateResult{}, layoutErr(op, layout,
				fmt.Errorf("could not save tracker data: %w", err))
		}
	}

	result.Mean, result.StdDev, result.Min, result.Max = Summarize(
		result.Rewards)
	result.MeanLength = float64(totalSteps) / float64(c.NumRuns)

	logger.Info("finished layout", "mean", result.Mean, "std",
		result.StdDev, "truncated", result.Truncated)
	return result, nil
}

// layoutErr attaches a layout to an error
func layoutErr(op, layout string, err error) error {
	return &EvalError{Op: op, Layout: layout, Err: err}
}
