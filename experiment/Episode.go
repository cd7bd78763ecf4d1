package experiment

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/samuelfneumann/layouteval/agent"
	"github.com/samuelfneumann/layouteval/agent/policy"
	env "github.com/samuelfneumann/layouteval/environment"
	"github.com/samuelfneumann/layouteval/experiment/tracker"
	ts "github.com/samuelfneumann/layouteval/timestep"
	"github.com/samuelfneumann/layouteval/utils/floatutils"
)

// Episode is the result of running a single episode
type Episode struct {
	// Reward is the sum of rewards over all steps of the episode
	Reward float64

	// Steps is the number of environment steps taken
	Steps int

	// Truncated is true if the episode was cut off by the step bound
	// before the environment ended it
	Truncated bool

	// Value is the agent's value estimate of the first observation.
	// It is only set if HasValue is true.
	Value    float64
	HasValue bool

	// Frames holds one rendered frame per step, if frames were
	// captured
	Frames []image.Image
}

// Runner runs single episodes of an agent in an environment
type Runner struct {
	// MaxSteps bounds the number of steps in an episode
	MaxSteps int

	// Trackers are notified of every TimeStep of each episode
	Trackers []tracker.Tracker

	// Logger logs truncated episodes. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// NewRunner returns a new Runner
func NewRunner(maxSteps int, logger *slog.Logger,
	trackers ...tracker.Tracker) *Runner {
	return &Runner{MaxSteps: maxSteps, Trackers: trackers, Logger: logger}
}

// RunEpisode runs a single episode of an agent in an environment,
// selecting actions from the agent's action distributions with s. The
// episode runs until the environment ends it or until MaxSteps steps
// have been taken. If captureFrames is true, the environment is
// rendered after each step.
//
// Dimensions of the agent and environment are checked before the
// environment is reset. If ctx is done at a step boundary, the episode
// is abandoned and an error wrapping ErrCancelled is returned.
func (r *Runner) RunEpisode(ctx context.Context, a agent.Agent,
	e env.Environment, s policy.Selector, captureFrames bool) (Episode,
	error) {
	if r.MaxSteps < 1 {
		return Episode{}, &EvalError{
			Op:  "runEpisode",
			Err: fmt.Errorf("%w: maximum steps must be positive", ErrConfig),
		}
	}
	if err := checkDims(a, e); err != nil {
		return Episode{}, &EvalError{Op: "runEpisode", Err: err}
	}

	if stateful, ok := a.(agent.Resetter); ok {
		stateful.Reset()
	}

	if err := ctx.Err(); err != nil {
		return Episode{}, cancelled("runEpisode", err)
	}
	step, err := e.Reset()
	if err != nil {
		return Episode{}, &EvalError{
			Op:  "runEpisode",
			Err: fmt.Errorf("could not reset environment: %w", err),
		}
	}
	r.track(step)

	var episode Episode
	if v, ok := a.(agent.Valuer); ok && v.HasValue() {
		value, err := v.Value(step.Observation)
		if err != nil {
			return Episode{}, &EvalError{
				Op:  "runEpisode",
				Err: fmt.Errorf("could not estimate value: %w", err),
			}
		}
		episode.Value = value
		episode.HasValue = true
	}
	if captureFrames {
		episode.Frames = make([]image.Image, 0, 64)
	}

	for {
		if err := ctx.Err(); err != nil {
			return Episode{}, cancelled("runEpisode", err)
		}

		probs, err := a.ActionDistribution(step.Observation)
		if err != nil {
			return Episode{}, &EvalError{
				Op:  "runEpisode",
				Err: fmt.Errorf("could not compute action distribution: %w", err),
			}
		}
		if err := floatutils.CheckDistribution(probs, e.ActionCount()); err != nil {
			return Episode{}, &EvalError{
				Op:  "runEpisode",
				Err: fmt.Errorf("%w: step %d: %v", ErrInvalidDistribution, step.Number, err),
			}
		}

		action, err := s.Select(probs)
		if err != nil {
			return Episode{}, &EvalError{
				Op:  "runEpisode",
				Err: fmt.Errorf("could not select action: %w", err),
			}
		}

		next, done, err := e.Step(action)
		if err != nil {
			return Episode{}, &EvalError{
				Op:  "runEpisode",
				Err: fmt.Errorf("could not step environment: %w", err),
			}
		}
		episode.Steps++
		episode.Reward += next.Reward
		step = next

		if captureFrames {
			frame, err := e.Render()
			if err != nil {
				return Episode{}, &EvalError{
					Op:  "runEpisode",
					Err: fmt.Errorf("could not render step %d: %w", step.Number, err),
				}
			}
			episode.Frames = append(episode.Frames, frame)
		}

		if done || step.Last() {
			step.StepType = ts.Last
			r.track(step)
			return episode, nil
		}

		if episode.Steps >= r.MaxSteps {
			step.StepType = ts.Last
			r.track(step)
			episode.Truncated = true

			r.logger().Warn("episode truncated",
				"steps", episode.Steps, "reward", episode.Reward)
			return episode, nil
		}
		r.track(step)
	}
}

// track notifies each Tracker of a TimeStep
func (r *Runner) track(t ts.TimeStep) {
	for _, tr := range r.Trackers {
		tr.Track(t)
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// checkDims returns an error if an agent cannot act in an environment
func checkDims(a agent.Agent, e env.Environment) error {
	if a.ObservationDim() != e.ObservationDim() {
		return fmt.Errorf("%w: agent accepts observations of size %d, "+
			"environment produces %d", ErrDimensionMismatch,
			a.ObservationDim(), e.ObservationDim())
	}
	if a.ActionCount() != e.ActionCount() {
		return fmt.Errorf("%w: agent has %d actions, environment has %d",
			ErrDimensionMismatch, a.ActionCount(), e.ActionCount())
	}
	return nil
}

// cancelled returns the error reported when ctx is done
func cancelled(op string, ctxErr error) error {
	return &EvalError{Op: op, Err: fmt.Errorf("%w: %w", ErrCancelled, ctxErr)}
}
