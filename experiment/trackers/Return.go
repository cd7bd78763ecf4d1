// Package trackers implements concrete Trackers of episodic data
package trackers

import (
	"fmt"

	"github.com/samuelfneumann/layouteval/experiment/tracker"
	ts "github.com/samuelfneumann/layouteval/timestep"
)

// Return tracks and saves the episodic return of each episode. When
// an environment returns a TimeStep, this Tracker will extract the
// reward and accumulate the return for the current episode.
//
// Note: An episode must finish for this Tracker to save its data.
// An episode that is abandoned, for example because its evaluation was
// cancelled, is discarded when the next episode starts.
type Return struct {
	lastTimeStep   int
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn(filename string) *Return {
	return &Return{lastTimeStep: -1, filename: filename}
}

// Track tracks the rewards seen on a timestep. A First TimeStep starts
// accumulating the return of a new episode, and a Last TimeStep caches
// the return of the current episode.
//
// Track panics if it is called for non-sequential timesteps
func (r *Return) Track(step ts.TimeStep) {
	if step.First() {
		r.currentReturn = 0
		r.lastTimeStep = step.Number
		return
	}

	// Ensure that Track is called on sequential timesteps
	if r.lastTimeStep+1 != step.Number {
		panic(fmt.Sprintf("track: last two timesteps tracked are not "+
			"sequential: timestep %v --> timestep %v were tracked",
			r.lastTimeStep, step.Number))
	}

	r.currentReturn += step.Reward
	r.lastTimeStep = step.Number

	if step.Last() {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0.0
		r.lastTimeStep = -1
	}
}

// Data returns the returns of all finished episodes
func (r *Return) Data() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Save saves the data tracked by the Return Tracker to disk.
func (r *Return) Save() error {
	return tracker.Save(r.filename, r.episodeReturns)
}
