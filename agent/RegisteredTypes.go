package agent

import (
	"errors"
	"fmt"
	"sync"

	"github.com/samuelfneumann/layouteval/experiment/checkpointer"
)

// ErrDimensionMismatch is returned when the dimensions of a parameter
// set do not match the dimensions an agent was requested with
var ErrDimensionMismatch = errors.New("dimension mismatch")

// ErrArchitecture is returned when a parameter set was saved by an
// architecture other than the one it is loaded into
var ErrArchitecture = errors.New("architecture mismatch")

// Constructor constructs an Agent of some Type from a validated
// parameter set and an architecture Config
type Constructor func(p *checkpointer.Params, c Config) (Agent, error)

// Registered types with the package. Once a Type has been registered,
// agents of that Type can be loaded.
//
// No Type's are registered with this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var (
	registeredTypes = make(map[Type]Constructor)
	registryLock    sync.RWMutex
)

// Register registers a Constructor for agents of Type t
func Register(t Type, c Constructor) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registeredTypes[t] = c
}

// registered returns the Constructor registered with a Type
func registered(t Type) (Constructor, bool) {
	registryLock.RLock()
	defer registryLock.RUnlock()
	c, ok := registeredTypes[t]
	return c, ok
}

// Load constructs an Agent described by c that accepts obsDim
// dimensional observations and chooses between actDim actions, and
// loads its parameters from path.
//
// Loading is all-or-nothing: a missing parameter file is reported
// with checkpointer.ErrMissing and a parameter set of the wrong shape
// or whose layers do not chain is reported with ErrDimensionMismatch.
// Agents are never default-initialized.
func Load(path string, obsDim, actDim int, c Config) (Agent, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	p, err := checkpointer.Load(path)
	if errors.Is(err, checkpointer.ErrMalformed) {
		return nil, fmt.Errorf("load: %w: %w", ErrDimensionMismatch, err)
	} else if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	if p.ObsDim != obsDim || p.ActDim != actDim {
		return nil, fmt.Errorf("load: %w: parameters at %v have %d "+
			"observations and %d actions, want %d and %d",
			ErrDimensionMismatch, path, p.ObsDim, p.ActDim, obsDim, actDim)
	}

	if len(p.Policy) != len(c.Hidden)+1 {
		return nil, fmt.Errorf("load: %w: parameters at %v have %d layers, "+
			"architecture wants %d", ErrDimensionMismatch, path,
			len(p.Policy), len(c.Hidden)+1)
	}
	for i, h := range c.Hidden {
		if p.Policy[i].Cols != h {
			return nil, fmt.Errorf("load: %w: parameters at %v have hidden "+
				"layer %d of size %d, architecture wants %d",
				ErrDimensionMismatch, path, i, p.Policy[i].Cols, h)
		}
		act := p.Policy[i].Activation
		if c.Activation != "" && act != c.Activation {
			return nil, fmt.Errorf("load: %w: parameters at %v use %q "+
				"activations, architecture wants %q", ErrArchitecture, path,
				act, c.Activation)
		}
	}

	construct, _ := registered(c.Type)
	a, err := construct(p, c)
	if err != nil {
		return nil, fmt.Errorf("load: %w: could not construct %v agent: %w",
			ErrArchitecture, c.Type, err)
	}
	return a, nil
}
