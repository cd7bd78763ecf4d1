// Package linear implements agents using linear function approximation
package linear

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/layouteval/agent"
	"github.com/samuelfneumann/layouteval/experiment/checkpointer"
	"github.com/samuelfneumann/layouteval/utils/floatutils"
)

func init() {
	agent.Register(agent.Linear, func(p *checkpointer.Params,
		c agent.Config) (agent.Agent, error) {
		if len(c.Hidden) != 0 {
			return nil, fmt.Errorf("linear agents cannot have hidden layers")
		}
		return New(p)
	})
}

// Softmax implements a softmax policy using linear function
// approximation. Action logits are a linear function of observations.
//
// If its parameter set has a single-layer value head, Softmax also
// estimates state values linearly and implements agent.Valuer.
type Softmax struct {
	weights *mat.Dense    // rows = features, cols = actions
	bias    *mat.VecDense // one per action

	value     *mat.VecDense // one per feature, nil if no value head
	valueBias float64

	features, actions int
}

// New returns a new linear Softmax policy using the parameter set p
func New(p *checkpointer.Params) (*Softmax, error) {
	if len(p.Policy) != 1 {
		return nil, fmt.Errorf("new: linear policy needs 1 layer, have %d",
			len(p.Policy))
	}
	layer := p.Policy[0]
	if layer.Activation != checkpointer.Identity && layer.Activation != "" {
		return nil, fmt.Errorf("new: linear policy cannot use %q activations",
			layer.Activation)
	}

	s := &Softmax{
		weights:  mat.NewDense(layer.Rows, layer.Cols, cloneOf(layer.Weights)),
		bias:     mat.NewVecDense(layer.Cols, nil),
		features: layer.Rows,
		actions:  layer.Cols,
	}
	if layer.Bias != nil {
		s.bias.CopyVec(mat.NewVecDense(layer.Cols, layer.Bias))
	}

	switch len(p.Value) {
	case 0:
	case 1:
		v := p.Value[0]
		s.value = mat.NewVecDense(v.Rows, cloneOf(v.Weights))
		if v.Bias != nil {
			s.valueBias = v.Bias[0]
		}
	default:
		return nil, fmt.Errorf("new: linear value function needs 1 layer, "+
			"have %d", len(p.Value))
	}

	return s, nil
}

// ObservationDim returns the number of features the policy accepts
func (s *Softmax) ObservationDim() int {
	return s.features
}

// ActionCount returns the number of actions the policy chooses from
func (s *Softmax) ActionCount() int {
	return s.actions
}

// ActionDistribution returns the softmax of the action logits
func (s *Softmax) ActionDistribution(obs *mat.VecDense) ([]float64, error) {
	if obs.Len() != s.features {
		return nil, fmt.Errorf("actionDistribution: %w: observation has "+
			"%d features, want %d", agent.ErrDimensionMismatch, obs.Len(),
			s.features)
	}

	logits := mat.NewVecDense(s.actions, nil)
	logits.MulVec(s.weights.T(), obs)
	logits.AddVec(logits, s.bias)

	return floatutils.Softmax(mat.Col(nil, 0, logits)), nil
}

// HasValue returns whether the policy has a state-value head
func (s *Softmax) HasValue() bool {
	return s.value != nil
}

// Value returns the estimated state value of an observation
func (s *Softmax) Value(obs *mat.VecDense) (float64, error) {
	if s.value == nil {
		return 0, fmt.Errorf("value: policy has no value head")
	}
	if obs.Len() != s.features {
		return 0, fmt.Errorf("value: %w: observation has %d features, "+
			"want %d", agent.ErrDimensionMismatch, obs.Len(), s.features)
	}
	return mat.Dot(s.value, obs) + s.valueBias, nil
}

// cloneOf returns a copy of a slice so that policies never share
// backing data with a parameter set
func cloneOf(data []float64) []float64 {
	return append([]float64(nil), data...)
}
