package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samuelfneumann/layouteval/agent"
	"github.com/samuelfneumann/layouteval/agent/policy"
	"github.com/samuelfneumann/layouteval/environment/envconfig"
	"github.com/samuelfneumann/layouteval/experiment"
)

// sweepConfig describes a complete evaluation sweep. It can be loaded
// from a JSON file and is overridden by command line flags.
type sweepConfig struct {
	Layouts     []string          `json:"layouts"`
	Checkpoints string            `json:"checkpoints,omitempty"`
	Experiment  experiment.Config `json:"experiment"`
	Environment envconfig.Config  `json:"environment"`
	Agent       agent.Config      `json:"agent"`
}

// defaultSweepConfig returns the sweepConfig used when no file is given
func defaultSweepConfig() sweepConfig {
	return sweepConfig{
		Experiment:  experiment.DefaultConfig(policy.Greedy),
		Environment: envconfig.Default(),
		Agent:       agent.Config{Type: agent.Linear},
	}
}

// loadSweepConfig loads a sweepConfig from a JSON file. Missing fields
// keep their default values.
func loadSweepConfig(filename string) (sweepConfig, error) {
	c := defaultSweepConfig()
	if filename == "" {
		return c, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return sweepConfig{}, fmt.Errorf("loadSweepConfig: could not read "+
			"config: %v", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return sweepConfig{}, fmt.Errorf("loadSweepConfig: could not decode "+
			"%v: %v", filename, err)
	}
	return c, nil
}

// validate returns an error describing whether or not the
// configuration is valid
func (c sweepConfig) validate() error {
	if len(c.Layouts) == 0 {
		return fmt.Errorf("validate: %w: no layouts to evaluate",
			experiment.ErrConfig)
	}
	seen := make(map[string]bool, len(c.Layouts))
	for _, l := range c.Layouts {
		if seen[l] {
			return fmt.Errorf("validate: %w: layout %q given more than once",
				experiment.ErrConfig, l)
		}
		seen[l] = true
	}

	if err := c.Experiment.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if err := c.Environment.Validate(); err != nil {
		return fmt.Errorf("validate: %w: %v", experiment.ErrConfig, err)
	}
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("validate: %w: %v", experiment.ErrConfig, err)
	}
	return nil
}
