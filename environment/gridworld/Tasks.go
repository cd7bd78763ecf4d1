package gridworld

import (
	"github.com/samuelfneumann/layouteval/timestep"
)

// Default rewards of the Rendezvous task
const (
	DefaultGoalReward float64 = 20.0
	DefaultStepReward float64 = 0.0
)

// Rendezvous represents the cooperative task of having both agents
// stand on goal cells at the same time. Each rendezvous is rewarded
// with goalReward and all other transitions with stepReward.
//
// Rendezvous only inspects observations, so it can be used with any
// layout.
type Rendezvous struct {
	goalReward float64
	stepReward float64
}

// NewRendezvous returns a new Rendezvous task
func NewRendezvous(goalReward, stepReward float64) *Rendezvous {
	return &Rendezvous{goalReward, stepReward}
}

// GetReward returns the reward for transitioning from TimeStep t to
// TimeStep next
func (r *Rendezvous) GetReward(_ timestep.TimeStep,
	next timestep.TimeStep) float64 {
	if r.AtGoal(next) {
		return r.goalReward
	}
	return r.stepReward
}

// AtGoal returns whether both agents are on a goal cell in the
// TimeStep's observation. Agents never share a cell, so they are
// always on distinct goals.
func (r *Rendezvous) AtGoal(t timestep.TimeStep) bool {
	obs := t.Observation
	if obs == nil {
		return false
	}
	goals := (obs.Len() - 4) / 4

	onGoal := [2]bool{}
	for g := 0; g < goals; g++ {
		offset := 4 + 4*g
		for agent := 0; agent < 2; agent++ {
			dr := obs.AtVec(offset + 2*agent)
			dc := obs.AtVec(offset + 2*agent + 1)
			if dr == 0 && dc == 0 {
				onGoal[agent] = true
			}
		}
	}

	return onGoal[0] && onGoal[1]
}
