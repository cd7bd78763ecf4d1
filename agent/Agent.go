// Package agent defines the interfaces of trained agents that can be
// evaluated, along with the registry used to load them from persisted
// parameter sets.
package agent

import (
	"gonum.org/v1/gonum/mat"
)

// Agent determines the implementation details of a trained policy.
//
// An Agent maps observations to a probability distribution over a
// finite set of discrete actions. How an action is chosen from the
// distribution is decided by the caller, so that the same Agent can
// be evaluated greedily or stochastically.
type Agent interface {
	// ActionDistribution returns the probability of taking each action
	// given an observation. The returned slice has ActionCount()
	// non-negative elements summing to 1.
	ActionDistribution(obs *mat.VecDense) ([]float64, error)

	// ObservationDim returns the length of observations the Agent
	// accepts
	ObservationDim() int

	// ActionCount returns the number of actions the Agent chooses from
	ActionCount() int
}

// Valuer is an Agent that can also estimate the value of an
// observation. HasValue reports whether Value can be called, since
// some parameter sets carry no value function.
type Valuer interface {
	Agent
	HasValue() bool
	Value(obs *mat.VecDense) (float64, error)
}

// Resetter is an Agent that carries internal state between steps of an
// episode. Reset() is called before each new episode.
type Resetter interface {
	Agent
	Reset()
}

// Closer is an Agent that must be closed after it is done being used
type Closer interface {
	Agent
	Close() error
}

// Close closes an Agent if it is a Closer
func Close(a Agent) error {
	if c, ok := a.(Closer); ok {
		return c.Close()
	}
	return nil
}
