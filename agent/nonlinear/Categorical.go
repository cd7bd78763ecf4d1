// Package nonlinear implements agents using neural network function
// approximation
package nonlinear

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/layouteval/agent"
	"github.com/samuelfneumann/layouteval/experiment/checkpointer"
	"github.com/samuelfneumann/layouteval/network"
	"github.com/samuelfneumann/layouteval/utils/floatutils"
)

func init() {
	agent.Register(agent.MLP, func(p *checkpointer.Params,
		_ agent.Config) (agent.Agent, error) {
		return NewCategoricalMLP(p)
	})
}

// CategoricalMLP implements a categorical (softmax) policy whose
// action logits are predicted by a multi-layered perceptron. If the
// parameter set has a value head, it is predicted by a second head of
// the same network.
type CategoricalMLP struct {
	net      *network.MLP
	hasValue bool
	actions  int

	lock sync.Mutex // the network's VM cannot be run concurrently
}

// NewCategoricalMLP returns a new CategoricalMLP policy using the
// parameter set p
func NewCategoricalMLP(p *checkpointer.Params) (*CategoricalMLP, error) {
	heads := [][]checkpointer.Layer{p.Policy}
	if len(p.Value) > 0 {
		heads = append(heads, p.Value)
	}

	net, err := network.NewMLP(heads...)
	if err != nil {
		return nil, fmt.Errorf("newCategoricalMLP: could not create "+
			"policy network: %v", err)
	}

	return &CategoricalMLP{
		net:      net,
		hasValue: len(p.Value) > 0,
		actions:  net.Outputs(0),
	}, nil
}

// ObservationDim returns the number of features the policy accepts
func (c *CategoricalMLP) ObservationDim() int {
	return c.net.Features()
}

// ActionCount returns the number of actions the policy chooses from
func (c *CategoricalMLP) ActionCount() int {
	return c.actions
}

// forward runs the network on an observation
func (c *CategoricalMLP) forward(obs *mat.VecDense) ([][]float64, error) {
	if obs.Len() != c.net.Features() {
		return nil, fmt.Errorf("%w: observation has %d features, want %d",
			agent.ErrDimensionMismatch, obs.Len(), c.net.Features())
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	return c.net.Forward(mat.Col(nil, 0, obs))
}

// ActionDistribution returns the softmax of the predicted action logits
func (c *CategoricalMLP) ActionDistribution(obs *mat.VecDense) ([]float64,
	error) {
	out, err := c.forward(obs)
	if err != nil {
		return nil, fmt.Errorf("actionDistribution: %w", err)
	}
	return floatutils.Softmax(out[0]), nil
}

// HasValue returns whether the network has a state-value head
func (c *CategoricalMLP) HasValue() bool {
	return c.hasValue
}

// Value returns the predicted state value of an observation
func (c *CategoricalMLP) Value(obs *mat.VecDense) (float64, error) {
	if !c.hasValue {
		return 0, fmt.Errorf("value: network has no value head")
	}

	out, err := c.forward(obs)
	if err != nil {
		return 0, fmt.Errorf("value: %w", err)
	}
	return out[1][0], nil
}

// Close releases the resources used by the policy network
func (c *CategoricalMLP) Close() error {
	return c.net.Close()
}
