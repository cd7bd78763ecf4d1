package experiment

import (
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/samuelfneumann/layouteval/agent"
	env "github.com/samuelfneumann/layouteval/environment"
	"github.com/samuelfneumann/layouteval/experiment/checkpointer"
	"github.com/samuelfneumann/layouteval/experiment/tracker"
)

// AgentFactory creates the Agent evaluated on a layout. The observation
// and action dimensions are those of the environment created for the
// layout.
type AgentFactory func(layout string, obsDim, actDim int) (agent.Agent, error)

// CheckpointAgents returns an AgentFactory that loads agents from the
// parameter sets stored under root, one per layout
func CheckpointAgents(root string, c agent.Config) AgentFactory {
	return func(layout string, obsDim, actDim int) (agent.Agent, error) {
		return agent.Load(checkpointer.Path(root, layout), obsDim, actDim, c)
	}
}

// TrackerFactory creates the Trackers notified of each TimeStep of all
// episodes on a layout
type TrackerFactory func(layout string) ([]tracker.Tracker, error)

// LayoutFunc is called with the result of each layout of a sweep as
// soon as the layout has finished
type LayoutFunc func(LayoutResult)

// Evaluator evaluates agents on layouts
type Evaluator struct {
	config   Config
	agents   AgentFactory
	envs     env.Factory
	trackers TrackerFactory
	onLayout LayoutFunc
	logger   *slog.Logger
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithLogger sets the logger of an Evaluator
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// WithTrackers sets the factory of Trackers used on each layout
func WithTrackers(t TrackerFactory) Option {
	return func(e *Evaluator) {
		e.trackers = t
	}
}

// WithLayoutFunc sets the function called as each layout of a sweep
// finishes. The function may be called concurrently if the Evaluator
// uses more than one worker.
func WithLayoutFunc(f LayoutFunc) Option {
	return func(e *Evaluator) {
		e.onLayout = f
	}
}

// NewEvaluator returns a new Evaluator
func NewEvaluator(c Config, agents AgentFactory, envs env.Factory,
	opts ...Option) (*Evaluator, error) {
	if err := c.Validate(); err != nil {
		return nil, &EvalError{Op: "newEvaluator", Err: err}
	}
	if agents == nil || envs == nil {
		return nil, &EvalError{
			Op:  "newEvaluator",
			Err: fmt.Errorf("%w: agent and environment factories are required", ErrConfig),
		}
	}

	e := &Evaluator{
		config: c,
		agents: agents,
		envs:   envs,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// Config returns the configuration of the Evaluator
func (e *Evaluator) Config() Config {
	return e.config
}

// layoutSeed returns the seed used for action selection on a layout,
// which depends only on the configured seed and the layout name
func (e *Evaluator) layoutSeed(layout string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(layout))
	return e.config.Seed ^ h.Sum64()
}
