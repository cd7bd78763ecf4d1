package policy

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// greedy implements greedy action selection. Ties are broken by
// choosing the action with the lowest index, so greedy action
// selection is deterministic.
type greedy struct{}

// NewGreedy creates a new greedy Selector
func NewGreedy() Selector {
	return greedy{}
}

// Select returns the index of the most probable action
func (greedy) Select(probs []float64) (int, error) {
	if len(probs) == 0 {
		return 0, fmt.Errorf("select: empty action distribution")
	}

	// MaxIdx returns the first index of the maximum value
	return floats.MaxIdx(probs), nil
}

// Mode returns Greedy
func (greedy) Mode() Mode {
	return Greedy
}
