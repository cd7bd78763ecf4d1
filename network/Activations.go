package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/layouteval/experiment/checkpointer"
)

// Activation represents an activation function type
type Activation struct {
	name string
	f    func(x *G.Node) (*G.Node, error)
}

// fwd performs the forward pass of an Activation
func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	return a.f(x)
}

// String implements the Stringer interface
func (a *Activation) String() string {
	return a.name
}

// IsIdentity returns whether or not the Activation is the identity
// function.
func (a *Activation) IsIdentity() bool {
	return a.name == checkpointer.Identity
}

// ActivationNamed returns the Activation with the given name. An empty
// name is the identity.
func ActivationNamed(name string) (*Activation, error) {
	switch name {
	case checkpointer.ReLU:
		return ReLU(), nil
	case checkpointer.TanH:
		return TanH(), nil
	case checkpointer.Identity, "":
		return Identity(), nil
	}
	return nil, fmt.Errorf("activationNamed: illegal activation %q", name)
}

// Identity returns an identity *Activation
func Identity() *Activation {
	return &Activation{
		name: checkpointer.Identity,
		f: func(x *G.Node) (*G.Node, error) {
			return x, nil
		},
	}
}

// ReLU returns a ReLU *Activation
func ReLU() *Activation {
	return &Activation{
		name: checkpointer.ReLU,
		f:    G.Rectify,
	}
}

// TanH returns a tanh *Activation
func TanH() *Activation {
	return &Activation{
		name: checkpointer.TanH,
		f:    G.Tanh,
	}
}
