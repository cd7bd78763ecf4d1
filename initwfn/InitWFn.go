// Package initwfn implements functionality to wrap Gorgonia InitWFn
// so that they can be JSON serialized into configuration files and
// used to draw fresh parameter sets for policies.
package initwfn

import (
	"encoding/json"
	"fmt"
	"os"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type describes different types of InitWFn that are available.
// Type is used to implement a basic type system of InitWFn's.
type Type string

// Available InitWFn types
const (
	GlorotU  Type = "GlorotU"
	GlorotN  Type = "GlorotN"
	HeU      Type = "HeU"
	HeN      Type = "HeN"
	Gaussian Type = "Gaussian"
	Zeroes   Type = "Zeroes"
)

// InitWFn wraps Gorgonia InitWFn so that they can be JSON marshalled and
// unmarshalled.
type InitWFn struct {
	initWFn G.InitWFn
	Type    Type
	Config  Config
}

// Config implements a Gorgonia InitWFn configuration and can be used to
// create the described Gorgonia InitWFn's.
type Config interface {
	// Create returns the Gorgonia InitWFn that the Config describes
	Create() G.InitWFn

	// Type returns the type of Gorgonia InitWFn that is returned
	Type() Type
}

// newInitWFn returns a new InitWFn
func newInitWFn(c Config) *InitWFn {
	return &InitWFn{initWFn: c.Create(), Type: c.Type(), Config: c}
}

// New returns the InitWFn of type t. The gain parameter is used by
// the Glorot and He initializers and as the standard deviation of
// the Gaussian initializer. It is ignored by Zeroes.
func New(t Type, gain float64) (*InitWFn, error) {
	config, err := newConfig(t)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	switch c := config.(type) {
	case *GlorotConfig:
		c.Gain = gain
	case *HeConfig:
		c.Gain = gain
	case *GaussianConfig:
		c.StdDev = gain
	}

	return newInitWFn(deref(config)), nil
}

// Weights draws a rows x cols matrix of weights in row major order
func (w *InitWFn) Weights(rows, cols int) ([]float64, error) {
	values := w.initWFn(tensor.Float64, rows, cols)

	weights, ok := values.([]float64)
	if !ok {
		return nil, fmt.Errorf("weights: %v initializer returned %T, "+
			"want []float64", w.Type, values)
	}
	return weights, nil
}

// String implements the fmt.Stringer interface
func (w *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", w.Type, w.Config)
}

// Load loads an InitWFn from a JSON file of the form
// {"Type": "HeN", "Config": {"Gain": 2}}
func Load(filename string) (*InitWFn, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load: could not read initializer: %v", err)
	}

	var w InitWFn
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("load: could not unmarshal initializer: %v",
			err)
	}
	return &w, nil
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (w *InitWFn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   Type
		Config json.RawMessage
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	config, err := newConfig(raw.Type)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}
	if len(raw.Config) > 0 {
		if err := json.Unmarshal(raw.Config, config); err != nil {
			return err
		}
	}

	*w = *newInitWFn(deref(config))
	return nil
}

// newConfig returns a pointer to the zero Config of type t
func newConfig(t Type) (Config, error) {
	switch t {
	case GlorotU, GlorotN:
		return &GlorotConfig{Normal: t == GlorotN}, nil
	case HeU, HeN:
		return &HeConfig{Normal: t == HeN}, nil
	case Gaussian:
		return &GaussianConfig{}, nil
	case Zeroes:
		return &ZeroesConfig{}, nil
	}
	return nil, fmt.Errorf("no such initializer type %q", t)
}

// deref returns the Config value pointed to by a Config pointer
func deref(c Config) Config {
	switch c := c.(type) {
	case *GlorotConfig:
		return *c
	case *HeConfig:
		return *c
	case *GaussianConfig:
		return *c
	case *ZeroesConfig:
		return *c
	}
	return c
}
