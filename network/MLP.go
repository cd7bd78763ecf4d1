// Package network implements feed forward neural networks built from
// persisted parameter sets with Gorgonia
package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/layouteval/experiment/checkpointer"
)

// MLP implements a multi-layered perceptron with one or more output
// heads which share a single input. Each head is a separate chain of
// fully connected layers. An MLP only performs forward passes on one
// input row at a time and is not safe for concurrent use.
type MLP struct {
	g        *G.ExprGraph
	vm       G.VM
	input    *G.Node
	features int

	outputs []int
	predVal []G.Value
}

// NewMLP creates a new MLP with one head per element of heads. All
// heads must accept the same number of features.
func NewMLP(heads ...[]checkpointer.Layer) (*MLP, error) {
	if len(heads) == 0 || len(heads[0]) == 0 {
		return nil, fmt.Errorf("newMLP: at least one non-empty head is " +
			"required")
	}
	features := heads[0][0].Rows

	g := G.NewGraph()
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(1, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	net := &MLP{
		g:        g,
		input:    input,
		features: features,
		outputs:  make([]int, len(heads)),
		predVal:  make([]G.Value, len(heads)),
	}

	for h, layers := range heads {
		if layers[0].Rows != features {
			return nil, fmt.Errorf("newMLP: head %d accepts %d features, "+
				"want %d", h, layers[0].Rows, features)
		}

		x := input
		for i, l := range layers {
			layer, err := newFCLayer(g, l, fmt.Sprintf("H%dL%d", h, i))
			if err != nil {
				return nil, fmt.Errorf("newMLP: head %d: %v", h, err)
			}
			if x, err = layer.fwd(x); err != nil {
				return nil, fmt.Errorf("newMLP: could not compute forward "+
					"pass of head %d layer %d: %v", h, i, err)
			}
		}

		net.outputs[h] = layers[len(layers)-1].Cols
		G.Read(x, &net.predVal[h])
	}

	net.vm = G.NewTapeMachine(g)
	return net, nil
}

// Graph returns the computational graph of the MLP
func (m *MLP) Graph() *G.ExprGraph {
	return m.g
}

// Features returns the number of input features
func (m *MLP) Features() int {
	return m.features
}

// Outputs returns the number of outputs of a head
func (m *MLP) Outputs(head int) int {
	return m.outputs[head]
}

// Forward runs the forward pass on an input and returns the output of
// every head
func (m *MLP) Forward(input []float64) ([][]float64, error) {
	if len(input) != m.features {
		return nil, fmt.Errorf("forward: input has %d features, want %d",
			len(input), m.features)
	}

	inputT := tensor.New(
		tensor.WithShape(1, m.features),
		tensor.WithBacking(append([]float64(nil), input...)),
	)
	if err := G.Let(m.input, inputT); err != nil {
		return nil, fmt.Errorf("forward: could not set input: %v", err)
	}

	defer m.vm.Reset()
	if err := m.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}

	out := make([][]float64, len(m.predVal))
	for h, val := range m.predVal {
		switch data := val.Data().(type) {
		case []float64:
			out[h] = append([]float64(nil), data...)
		case float64:
			out[h] = []float64{data}
		default:
			return nil, fmt.Errorf("forward: head %d produced %T", h, data)
		}
	}
	return out, nil
}

// Close releases the resources of the MLP's VM
func (m *MLP) Close() error {
	return m.vm.Close()
}
