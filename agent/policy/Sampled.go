package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// sampled implements stochastic action selection by drawing actions
// from a categorical distribution. Two Selectors created with the same
// seed select the same sequence of actions given the same sequence of
// distributions.
type sampled struct {
	seed   uint64
	source rand.Source // Source for random number generation
}

// NewSampled creates a new sampled Selector
func NewSampled(seed uint64) Selector {
	return &sampled{seed, rand.NewSource(seed)}
}

// Select draws an action from the action distribution
func (s *sampled) Select(probs []float64) (int, error) {
	if len(probs) == 0 {
		return 0, fmt.Errorf("select: empty action distribution")
	}

	// Construct a categorical distribution over actions using action
	// probabilities
	dist := distuv.NewCategorical(probs, s.source)

	return int(dist.Rand()), nil
}

// Mode returns Sampled
func (s *sampled) Mode() Mode {
	return Sampled
}
