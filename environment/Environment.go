// Package environment outlines the interfaces and structs needed to
// implement concrete task environments that a policy can be evaluated
// in.
package environment

import (
	"image"

	"github.com/samuelfneumann/layouteval/timestep"
)

// Environment implements a resettable, stateful simulation of a task
// with a finite, discrete set of actions.
//
// An Environment is never safe for concurrent use. Each episode begins
// with a call to Reset(), which must fully reset the simulation so that
// no state carries over from a previous episode.
type Environment interface {
	// Reset resets the environment and returns the first TimeStep of a
	// new episode
	Reset() (timestep.TimeStep, error)

	// Step takes an action in the environment, returning the next
	// TimeStep and whether or not the episode has ended
	Step(action int) (timestep.TimeStep, bool, error)

	// Render draws the current state of the environment
	Render() (image.Image, error)

	// ObservationDim returns the length of observation vectors
	ObservationDim() int

	// ActionCount returns the number of discrete actions. Valid actions
	// are in [0, ActionCount()).
	ActionCount() int
}

// Task implements the reward scheme for taking actions in some
// environment
type Task interface {
	GetReward(t timestep.TimeStep, next timestep.TimeStep) float64
	AtGoal(t timestep.TimeStep) bool
}

// Ender determines when episodes end. If End() returns true, then the
// argument TimeStep is modified so that it is the last in the episode.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Factory creates an Environment parameterized by one or more layouts
type Factory func(layouts ...string) (Environment, error)
