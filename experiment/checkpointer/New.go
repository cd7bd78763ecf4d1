package checkpointer

import (
	"fmt"

	"github.com/samuelfneumann/layouteval/initwfn"
)

// New returns a freshly initialized parameter set for a layout. The
// policy has one hidden layer per element of hidden, each followed by
// activation, and a final linear layer producing action logits. If
// withValue is true, a linear state-value head is added. Biases are
// initialized to zero.
func New(layout string, obsDim, actDim int, hidden []int, activation string,
	withValue bool, init *initwfn.InitWFn) (*Params, error) {
	p := &Params{Layout: layout, ObsDim: obsDim, ActDim: actDim}

	in := obsDim
	sizes := append(append([]int{}, hidden...), actDim)
	for i, out := range sizes {
		act := activation
		if i == len(sizes)-1 {
			act = Identity
		}

		l, err := newLayer(in, out, act, init)
		if err != nil {
			return nil, fmt.Errorf("new: %v", err)
		}
		p.Policy = append(p.Policy, l)
		in = out
	}

	if withValue {
		l, err := newLayer(obsDim, 1, Identity, init)
		if err != nil {
			return nil, fmt.Errorf("new: %v", err)
		}
		p.Value = []Layer{l}
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	return p, nil
}

// newLayer returns a new fully connected layer
func newLayer(in, out int, activation string,
	init *initwfn.InitWFn) (Layer, error) {
	weights, err := init.Weights(in, out)
	if err != nil {
		return Layer{}, err
	}

	return Layer{
		Rows:       in,
		Cols:       out,
		Weights:    weights,
		Bias:       make([]float64, out),
		Activation: activation,
	}, nil
}
