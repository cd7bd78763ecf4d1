// Package gridworld implements a cooperative two-agent gridworld. Both
// agents are controlled through a single joint discrete action and are
// rewarded whenever they stand on goal cells at the same time, after
// which they are returned to their starting cells.
package gridworld

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/layouteval/environment"
	"github.com/samuelfneumann/layouteval/timestep"
)

// Moves available to a single agent. The joint action of both agents
// is a1*Moves + a2.
const (
	Stay int = iota
	Up
	Down
	Left
	Right
	Moves
)

// Actions is the number of joint actions in a GridWorld
const Actions = Moves * Moves

var deltas = [Moves]cell{
	Stay:  {0, 0},
	Up:    {-1, 0},
	Down:  {1, 0},
	Left:  {0, -1},
	Right: {0, 1},
}

// GridWorld represents a cooperative gridworld environment
//
// A GridWorld may be created with multiple layouts, in which case
// each call to Reset() moves on to the next layout. All layouts must
// produce observations of the same length.
type GridWorld struct {
	environment.Task
	environment.Ender
	layouts []*Layout
	next    int
	current *Layout

	positions   [2]cell
	currentStep timestep.TimeStep
}

// New creates a new GridWorld with task t, ending episodes with e, over
// the argument layouts. The GridWorld must be Reset() before Step() is
// called.
func New(t environment.Task, e environment.Ender,
	layouts ...*Layout) (*GridWorld, error) {
	if len(layouts) == 0 {
		return nil, fmt.Errorf("new: at least one layout is required")
	}

	dim := layouts[0].ObservationDim()
	for _, l := range layouts[1:] {
		if l.ObservationDim() != dim {
			return nil, fmt.Errorf("new: layout %q has observation "+
				"dimension %d but layout %q has %d", l.Name(),
				l.ObservationDim(), layouts[0].Name(), dim)
		}
	}

	return &GridWorld{
		Task:    t,
		Ender:   e,
		layouts: layouts,
		current: layouts[0],
	}, nil
}

// Layout returns the layout of the current episode
func (g *GridWorld) Layout() *Layout {
	return g.current
}

// ObservationDim returns the length of observation vectors
func (g *GridWorld) ObservationDim() int {
	return g.layouts[0].ObservationDim()
}

// ActionCount returns the number of joint actions
func (g *GridWorld) ActionCount() int {
	return Actions
}

// Positions returns the (row, column) positions of both agents
func (g *GridWorld) Positions() (r1, c1, r2, c2 int) {
	return g.positions[0].r, g.positions[0].c, g.positions[1].r,
		g.positions[1].c
}

// Reset resets the environment to the starting cells of the next
// layout and returns the first TimeStep of the episode
func (g *GridWorld) Reset() (timestep.TimeStep, error) {
	g.current = g.layouts[g.next]
	g.next = (g.next + 1) % len(g.layouts)
	g.positions = g.current.starts

	g.currentStep = timestep.New(timestep.First, 0, g.observation(), 0)
	return g.currentStep, nil
}

// Step takes a joint action in the environment
func (g *GridWorld) Step(action int) (timestep.TimeStep, bool, error) {
	if g.currentStep.Observation == nil {
		return timestep.TimeStep{}, false, fmt.Errorf("step: environment " +
			"must be reset before stepping")
	}
	if g.currentStep.Last() {
		return timestep.TimeStep{}, false, fmt.Errorf("step: episode has " +
			"ended, reset the environment")
	}
	if action < 0 || action >= Actions {
		return timestep.TimeStep{}, false, fmt.Errorf("step: illegal "+
			"action %d, want [0, %d)", action, Actions)
	}

	g.move(action/Moves, action%Moves)

	next := timestep.New(timestep.Mid, 0, g.observation(),
		g.currentStep.Number+1)
	next.Reward = g.GetReward(g.currentStep, next)

	// A rendezvous sends both agents back to their starting cells
	if g.AtGoal(next) {
		g.positions = g.current.starts
		next.Observation = g.observation()
	}

	last := g.End(&next)
	g.currentStep = next

	return next, last, nil
}

// move moves both agents simultaneously. Agents cannot enter walls,
// cannot end up on the same cell, and cannot swap cells.
func (g *GridWorld) move(a1, a2 int) {
	current := g.positions
	proposed := [2]cell{}

	for i, a := range [2]int{a1, a2} {
		p := cell{current[i].r + deltas[a].r, current[i].c + deltas[a].c}
		if g.current.blocked(p) {
			p = current[i]
		}
		proposed[i] = p
	}

	if proposed[0] == proposed[1] {
		return
	}
	if proposed[0] == current[1] && proposed[1] == current[0] {
		return
	}
	g.positions = proposed
}

// observation returns the observation of the current state
func (g *GridWorld) observation() *mat.VecDense {
	l := g.current
	rows, cols := float64(l.rows), float64(l.cols)

	obs := make([]float64, 0, l.ObservationDim())
	for _, p := range g.positions {
		obs = append(obs, float64(p.r)/rows, float64(p.c)/cols)
	}
	for _, goal := range l.goals {
		for _, p := range g.positions {
			obs = append(obs, float64(goal.r-p.r)/rows,
				float64(goal.c-p.c)/cols)
		}
	}

	return mat.NewVecDense(len(obs), obs)
}
