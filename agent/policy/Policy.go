// Package policy implements the action-selection rules used to turn an
// agent's action distribution into a single action
package policy

import (
	"fmt"
	"strings"
)

// Mode determines how actions are selected from action distributions
type Mode string

const (
	// Greedy selects the most probable action
	Greedy Mode = "greedy"

	// Sampled draws an action from the action distribution
	Sampled Mode = "sampled"
)

// ParseMode parses a Mode from a string, ignoring case
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case Greedy, Sampled:
		return m, nil
	}
	return "", fmt.Errorf("parseMode: no such mode %q", s)
}

// String implements the fmt.Stringer interface
func (m Mode) String() string {
	return string(m)
}

// Selector selects actions from probability distributions over actions
type Selector interface {
	// Select returns the index of the selected action
	Select(probs []float64) (int, error)
	Mode() Mode
}

// New returns the Selector for a Mode. The seed is only used by modes
// which select actions stochastically.
func New(m Mode, seed uint64) (Selector, error) {
	switch m {
	case Greedy:
		return NewGreedy(), nil
	case Sampled:
		return NewSampled(seed), nil
	}
	return nil, fmt.Errorf("new: no such mode %q", m)
}
