// Package envconfig provides configuration structs for configuring
// environments with default task parameters. Environment configurations
// in this package are JSON serializable.
package envconfig

import (
	"fmt"

	env "github.com/samuelfneumann/layouteval/environment"
	"github.com/samuelfneumann/layouteval/environment/gridworld"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	GridWorld EnvName = "GridWorld"
)

// Default configuration values
const (
	DefaultHorizon int = 400
)

// Config implements a specific configuration of a specific environment
// and its task.
type Config struct {
	Environment EnvName `json:"environment"`

	// Horizon is the number of steps after which an episode ends
	Horizon int `json:"horizon"`

	GoalReward float64 `json:"goal_reward"`
	StepReward float64 `json:"step_reward"`

	// LayoutDir optionally holds layout files which take precedence
	// over builtin layouts
	LayoutDir string `json:"layout_dir,omitempty"`
}

// Default returns the default environment Config
func Default() Config {
	return Config{
		Environment: GridWorld,
		Horizon:     DefaultHorizon,
		GoalReward:  gridworld.DefaultGoalReward,
		StepReward:  gridworld.DefaultStepReward,
	}
}

// Validate returns an error describing whether or not the configuration
// is valid
func (c Config) Validate() error {
	switch c.Environment {
	case GridWorld:
	default:
		return fmt.Errorf("validate: no such environment %q", c.Environment)
	}

	if c.Horizon < 1 {
		return fmt.Errorf("validate: horizon must be positive, have %d",
			c.Horizon)
	}
	return nil
}

// Create returns the environment described by the Config, parameterized
// by the argument layouts.
func (c Config) Create(layouts ...string) (env.Environment, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	switch c.Environment {
	case GridWorld:
		return CreateGridWorld(c, layouts...)
	}

	return nil, fmt.Errorf("create: cannot create environment %v, no such "+
		"environment", c.Environment)
}

// Factory returns Create as an environment.Factory
func (c Config) Factory() env.Factory {
	return c.Create
}

// CreateGridWorld is a factory for creating the GridWorld environment
// over the named layouts
func CreateGridWorld(c Config, names ...string) (env.Environment, error) {
	layouts := make([]*gridworld.Layout, len(names))
	for i, name := range names {
		l, err := gridworld.LayoutNamed(name, c.LayoutDir)
		if err != nil {
			return nil, fmt.Errorf("createGridWorld: %w", err)
		}
		layouts[i] = l
	}

	task := gridworld.NewRendezvous(c.GoalReward, c.StepReward)
	ender := env.NewStepLimit(c.Horizon)

	g, err := gridworld.New(task, ender, layouts...)
	if err != nil {
		return nil, fmt.Errorf("createGridWorld: %w", err)
	}
	return g, nil
}
