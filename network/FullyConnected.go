package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/layouteval/experiment/checkpointer"
)

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	act     *Activation
}

// newFCLayer adds the weights of a persisted layer to the graph g
func newFCLayer(g *G.ExprGraph, l checkpointer.Layer,
	name string) (*fcLayer, error) {
	act, err := ActivationNamed(l.Activation)
	if err != nil {
		return nil, fmt.Errorf("newFCLayer: %v", err)
	}

	weightsT := tensor.New(
		tensor.WithShape(l.Rows, l.Cols),
		tensor.WithBacking(append([]float64(nil), l.Weights...)),
	)
	weights := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(l.Rows, l.Cols),
		G.WithName(name+"W"),
		G.WithValue(weightsT),
	)

	var bias *G.Node
	if l.Bias != nil {
		biasT := tensor.New(
			tensor.WithShape(1, l.Cols),
			tensor.WithBacking(append([]float64(nil), l.Bias...)),
		)
		bias = G.NewMatrix(
			g,
			tensor.Float64,
			G.WithShape(1, l.Cols),
			G.WithName(name+"B"),
			G.WithValue(biasT),
		)
	}

	return &fcLayer{weights: weights, bias: bias, act: act}, nil
}

// fwd adds the forward pass of the fcLayer to the computational graph.
// The input x must be a single row.
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.weights)
	if err != nil {
		return nil, err
	}
	if f.bias != nil {
		if x, err = G.Add(x, f.bias); err != nil {
			return nil, err
		}
	}
	if f.act.IsIdentity() {
		return x, nil
	}
	return f.act.fwd(x)
}
