package experiment

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	ts "github.com/samuelfneumann/layouteval/timestep"
	"gonum.org/v1/gonum/mat"
)

// discard is a logger which drops all records
var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeEnv is an environment whose episodes last a fixed number of
// steps. Rewards are given by reward, which is called with the index
// of the episode and the step.
type fakeEnv struct {
	obsDim  int
	actions int
	length  int // Steps per episode, episodes never end if < 1
	reward  func(episode, step int) float64

	episode int
	step    int
	resets  int
	steps   int
	renders int
	taken   []int
}

func newFakeEnv(obsDim, actions, length int) *fakeEnv {
	return &fakeEnv{
		obsDim:  obsDim,
		actions: actions,
		length:  length,
		reward:  func(int, int) float64 { return 1 },
		episode: -1,
	}
}

func (e *fakeEnv) observation() *mat.VecDense {
	obs := mat.NewVecDense(e.obsDim, nil)
	obs.SetVec(0, float64(e.step))
	return obs
}

func (e *fakeEnv) Reset() (ts.TimeStep, error) {
	e.resets++
	e.episode++
	e.step = 0
	return ts.New(ts.First, 0, e.observation(), 0), nil
}

func (e *fakeEnv) Step(action int) (ts.TimeStep, bool, error) {
	if action < 0 || action >= e.actions {
		return ts.TimeStep{}, false, fmt.Errorf("step: illegal action %d",
			action)
	}
	e.steps++
	e.step++
	e.taken = append(e.taken, action)

	r := e.reward(e.episode, e.step)
	if e.length > 0 && e.step >= e.length {
		return ts.New(ts.Last, r, e.observation(), e.step), true, nil
	}
	return ts.New(ts.Mid, r, e.observation(), e.step), false, nil
}

func (e *fakeEnv) Render() (image.Image, error) {
	e.renders++
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (e *fakeEnv) ObservationDim() int { return e.obsDim }
func (e *fakeEnv) ActionCount() int    { return e.actions }

// fakeAgent returns the same action distribution for every observation
type fakeAgent struct {
	obsDim int
	probs  []float64
	hook   func(calls int)

	calls  int
	resets int
	closed bool
}

func newFakeAgent(obsDim int, probs ...float64) *fakeAgent {
	return &fakeAgent{obsDim: obsDim, probs: probs}
}

func (a *fakeAgent) ActionDistribution(*mat.VecDense) ([]float64, error) {
	a.calls++
	if a.hook != nil {
		a.hook(a.calls)
	}
	return append([]float64(nil), a.probs...), nil
}

func (a *fakeAgent) ObservationDim() int { return a.obsDim }
func (a *fakeAgent) ActionCount() int    { return len(a.probs) }
func (a *fakeAgent) Reset()              { a.resets++ }

func (a *fakeAgent) Close() error {
	a.closed = true
	return nil
}

// valuedAgent is a fakeAgent with a constant state value
type valuedAgent struct {
	*fakeAgent
	value float64
}

func (v valuedAgent) HasValue() bool                       { return true }
func (v valuedAgent) Value(*mat.VecDense) (float64, error) { return v.value, nil }

// counter counts calls made from concurrent goroutines
type counter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *counter) inc(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[key]++
}

func (c *counter) get(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}
