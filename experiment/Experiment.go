// Package experiment implements the evaluation of trained agents on
// task layouts: running single episodes, aggregating the returns of
// repeated episodes on one layout, and sweeping over many layouts.
package experiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samuelfneumann/layouteval/agent/policy"
)

// Default configuration values
const (
	DefaultNumRuns  int = 10
	DefaultMaxSteps int = 10_000
)

// Config represents the configuration of an evaluation. A Config is a
// value: it is copied into an Evaluator and never modified afterwards,
// so evaluations never share mutable state.
type Config struct {
	// Mode determines how actions are selected
	Mode policy.Mode `json:"mode"`

	// NumRuns is the number of episodes run on each layout
	NumRuns int `json:"num_runs"`

	// MaxSteps bounds the number of steps of any episode, even if the
	// environment never ends the episode
	MaxSteps int `json:"max_steps"`

	// CaptureFirstRun determines whether frames of the first episode
	// on each layout are rendered and returned
	CaptureFirstRun bool `json:"capture_first_run"`

	// FailFast stops a sweep at the first layout that fails
	FailFast bool `json:"fail_fast"`

	// Workers is the number of layouts evaluated concurrently. Episodes
	// on the same layout are always run sequentially.
	Workers int `json:"workers"`

	// Seed seeds stochastic action selection
	Seed uint64 `json:"seed"`
}

// DefaultConfig returns the default Config for a Mode
func DefaultConfig(m policy.Mode) Config {
	return Config{
		Mode:            m,
		NumRuns:         DefaultNumRuns,
		MaxSteps:        DefaultMaxSteps,
		CaptureFirstRun: true,
		Workers:         1,
	}
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c Config) Validate() error {
	if _, err := policy.ParseMode(string(c.Mode)); err != nil {
		return fmt.Errorf("validate: %w: %v", ErrConfig, err)
	}
	if c.NumRuns < 1 {
		return fmt.Errorf("validate: %w: number of runs must be positive, "+
			"have %d", ErrConfig, c.NumRuns)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("validate: %w: maximum steps must be positive, "+
			"have %d", ErrConfig, c.MaxSteps)
	}
	if c.Workers < 0 {
		return fmt.Errorf("validate: %w: workers cannot be negative, have %d",
			ErrConfig, c.Workers)
	}
	return nil
}

// LoadConfig loads a JSON Config from a file. Fields missing from the
// file keep the values of DefaultConfig(policy.Greedy).
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not read config: %v",
			err)
	}

	c := DefaultConfig(policy.Greedy)
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode %v: %v",
			filename, err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	return c, nil
}
