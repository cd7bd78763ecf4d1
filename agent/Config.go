package agent

import (
	"errors"
	"fmt"
)

// ErrConfig is returned when an architecture configuration is invalid
var ErrConfig = errors.New("invalid agent configuration")

// Type represents a specific architecture of an agent. Agents of a
// Type are constructed by the constructor registered with that Type.
type Type string

const (
	// Linear softmax policies
	Linear Type = "linear"

	// Multi-layered perceptron categorical policies
	MLP Type = "mlp"
)

// Config represents the architecture options used to construct an
// agent before its parameters are loaded
type Config struct {
	Type Type `json:"type"`

	// Hidden are the sizes of the hidden layers of the policy network.
	// Linear agents must have no hidden layers.
	Hidden []int `json:"hidden,omitempty"`

	// Activation is the activation function of the hidden layers
	Activation string `json:"activation,omitempty"`
}

// Validate returns an error describing whether or not the
// configuration is valid
func (c Config) Validate() error {
	if _, ok := registered(c.Type); !ok {
		return fmt.Errorf("validate: %w: no agent registered with type %q",
			ErrConfig, c.Type)
	}
	if c.Type == Linear && len(c.Hidden) > 0 {
		return fmt.Errorf("validate: %w: linear agents cannot have hidden "+
			"layers", ErrConfig)
	}
	for i, h := range c.Hidden {
		if h < 1 {
			return fmt.Errorf("validate: %w: hidden layer %d has size %d",
				ErrConfig, i, h)
		}
	}
	return nil
}
