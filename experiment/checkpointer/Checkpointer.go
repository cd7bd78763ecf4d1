// Package checkpointer implements the persisted parameter sets that
// policies are loaded from. Parameter sets are namespaced by layout
// and are encoded with encoding/gob.
package checkpointer

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Filename is the name of the parameter file inside a layout's
// checkpoint directory
const Filename = "policy.gob"

// ErrMissing is returned when no parameter set exists at a path
var ErrMissing = errors.New("missing checkpoint")

// ErrMalformed is returned when the layers of a parameter set do not
// chain from its observation dimension to its action count
var ErrMalformed = errors.New("malformed checkpoint")

// Activation names understood by policies loading a Params
const (
	ReLU     = "relu"
	TanH     = "tanh"
	Identity = "identity"
)

// Layer is a single fully connected layer. Weights are stored in row
// major order with one row per input and one column per output.
type Layer struct {
	Rows, Cols int
	Weights    []float64
	Bias       []float64 // Optional, len(Bias) == Cols when present
	Activation string
}

// Params is a persisted parameter set of a policy, and optionally of a
// state-value function
type Params struct {
	Layout string
	ObsDim int
	ActDim int

	// Policy maps observations to action logits
	Policy []Layer

	// Value optionally maps observations to a scalar state value
	Value []Layer
}

// Path returns the path of the parameter set of a layout under the
// checkpoint root directory
func Path(root, layout string) string {
	return filepath.Join(root, layout, Filename)
}

// Validate returns an error if the parameter set is malformed or if
// its layers do not chain from ObsDim inputs to ActDim logits and a
// single state value.
func (p *Params) Validate() error {
	if p.ObsDim < 1 || p.ActDim < 1 {
		return fmt.Errorf("validate: %w: dimensions must be positive, have "+
			"observations %d and actions %d", ErrMalformed, p.ObsDim, p.ActDim)
	}
	if len(p.Policy) == 0 {
		return fmt.Errorf("validate: %w: no policy layers", ErrMalformed)
	}
	if err := validateChain(p.Policy, p.ObsDim, p.ActDim); err != nil {
		return fmt.Errorf("validate: %w: policy: %v", ErrMalformed, err)
	}
	if len(p.Value) > 0 {
		if err := validateChain(p.Value, p.ObsDim, 1); err != nil {
			return fmt.Errorf("validate: %w: value: %v", ErrMalformed, err)
		}
	}
	return nil
}

// validateChain checks that layers map in inputs to out outputs
func validateChain(layers []Layer, in, out int) error {
	for i, l := range layers {
		if l.Rows != in {
			return fmt.Errorf("layer %d has %d inputs, want %d", i, l.Rows, in)
		}
		if len(l.Weights) != l.Rows*l.Cols {
			return fmt.Errorf("layer %d has %d weights, want %d", i,
				len(l.Weights), l.Rows*l.Cols)
		}
		if l.Bias != nil && len(l.Bias) != l.Cols {
			return fmt.Errorf("layer %d has %d biases, want %d", i,
				len(l.Bias), l.Cols)
		}
		switch l.Activation {
		case ReLU, TanH, Identity, "":
		default:
			return fmt.Errorf("layer %d has illegal activation %q", i,
				l.Activation)
		}
		in = l.Cols
	}

	if in != out {
		return fmt.Errorf("final layer has %d outputs, want %d", in, out)
	}
	return nil
}

// Save saves the parameter set to a file, creating the parent
// directory if needed
func (p *Params) Save(path string) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save: could not create checkpoint directory: %v",
			err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("save: could not encode parameters: %v", err)
	}
	return file.Close()
}

// Load loads a parameter set from a file. The parameter set is
// validated before it is returned; a missing file is reported with
// ErrMissing.
func Load(path string) (*Params, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load: %w: %v", ErrMissing, path)
	} else if err != nil {
		return nil, fmt.Errorf("load: could not open checkpoint: %v", err)
	}
	defer file.Close()

	var p Params
	dec := gob.NewDecoder(file)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("load: could not decode %v: %v", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("load: %v: %w", path, err)
	}
	return &p, nil
}
