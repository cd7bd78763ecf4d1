package experiment

import (
	"context"
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/layouteval/agent"
	_ "github.com/samuelfneumann/layouteval/agent/linear"
	"github.com/samuelfneumann/layouteval/agent/policy"
	env "github.com/samuelfneumann/layouteval/environment"
	"github.com/samuelfneumann/layouteval/experiment/checkpointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture creates environments and agents for an Evaluator, recording
// how often each is created per layout
type fixture struct {
	envs   counter
	agents counter

	newEnv   func(layout string) *fakeEnv
	newAgent func(layout string) *fakeAgent

	created []*fakeAgent
}

func newFixture(length int, probs ...float64) *fixture {
	return &fixture{
		newEnv: func(string) *fakeEnv {
			return newFakeEnv(4, len(probs), length)
		},
		newAgent: func(string) *fakeAgent {
			return newFakeAgent(4, probs...)
		},
	}
}

func (f *fixture) envFactory() env.Factory {
	return func(layouts ...string) (env.Environment, error) {
		f.envs.inc(layouts[0])
		return f.newEnv(layouts[0]), nil
	}
}

func (f *fixture) agentFactory() AgentFactory {
	return func(layout string, obsDim, actDim int) (agent.Agent, error) {
		f.agents.inc(layout)
		a := f.newAgent(layout)
		f.agents.mu.Lock()
		f.created = append(f.created, a)
		f.agents.mu.Unlock()
		return a, nil
	}
}

func (f *fixture) evaluator(t *testing.T, c Config,
	opts ...Option) *Evaluator {
	t.Helper()
	opts = append([]Option{WithLogger(discard)}, opts...)
	e, err := NewEvaluator(c, f.agentFactory(), f.envFactory(), opts...)
	require.NoError(t, err)
	return e
}

func testConfig(m policy.Mode, runs int) Config {
	c := DefaultConfig(m)
	c.NumRuns = runs
	c.MaxSteps = 100
	return c
}

func TestEvaluateLayoutStatistics(t *testing.T) {
	f := newFixture(1, 1.0)
	f.newEnv = func(string) *fakeEnv {
		e := newFakeEnv(4, 1, 1)
		e.reward = func(episode, _ int) float64 {
			if episode < 9 {
				return 2
			}
			return 20
		}
		return e
	}

	e := f.evaluator(t, testConfig(policy.Greedy, 10))
	res, err := e.EvaluateLayout(context.Background(), "cramped_room")
	require.NoError(t, err)

	assert.Equal(t, "cramped_room", res.Layout)
	assert.Equal(t, policy.Greedy, res.Mode)
	assert.Len(t, res.Rewards, 10)
	assert.InDelta(t, 3.8, res.Mean, 1e-9)
	assert.InDelta(t, 5.4, res.StdDev, 1e-9)
	assert.Equal(t, 2.0, res.Min)
	assert.Equal(t, 20.0, res.Max)
	assert.Equal(t, 1.0, res.MeanLength)
	assert.Zero(t, res.Truncated)
}

func TestEvaluateLayoutSingleRun(t *testing.T) {
	f := newFixture(3, 0.9, 0.1)
	e := f.evaluator(t, testConfig(policy.Greedy, 1))

	res, err := e.EvaluateLayout(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Mean)
	assert.Equal(t, 0.0, res.StdDev)
	assert.Len(t, res.Frames, 3)
}

func TestEvaluateLayoutMeanWithinRange(t *testing.T) {
	f := newFixture(1, 1.0)
	f.newEnv = func(string) *fakeEnv {
		e := newFakeEnv(4, 1, 1)
		e.reward = func(int, int) float64 { return 0.1 }
		return e
	}

	e := f.evaluator(t, testConfig(policy.Sampled, 3))
	res, err := e.EvaluateLayout(context.Background(), "A")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Mean, res.Min)
	assert.LessOrEqual(t, res.Mean, res.Max)
}

func TestEvaluateLayoutCapturesFirstRunOnly(t *testing.T) {
	f := newFixture(4, 0.5, 0.5)
	var created *fakeEnv
	f.newEnv = func(string) *fakeEnv {
		created = newFakeEnv(4, 2, 4)
		return created
	}

	e := f.evaluator(t, testConfig(policy.Sampled, 5))
	res, err := e.EvaluateLayout(context.Background(), "A")
	require.NoError(t, err)

	assert.Len(t, res.Frames, 4)
	assert.Equal(t, 4, created.renders)
	assert.Equal(t, 20, created.steps)
}

func TestEvaluateLayoutWithoutCapture(t *testing.T) {
	f := newFixture(4, 0.5, 0.5)
	c := testConfig(policy.Greedy, 2)
	c.CaptureFirstRun = false

	res, err := f.evaluator(t, c).EvaluateLayout(context.Background(), "A")
	require.NoError(t, err)
	assert.Empty(t, res.Frames)
}

func TestEvaluateLayoutSingleAgentAndEnvironment(t *testing.T) {
	f := newFixture(2, 0.5, 0.5)
	var created *fakeEnv
	f.newEnv = func(string) *fakeEnv {
		created = newFakeEnv(4, 2, 2)
		return created
	}

	e := f.evaluator(t, testConfig(policy.Greedy, 5))
	_, err := e.EvaluateLayout(context.Background(), "A")
	require.NoError(t, err)

	assert.Equal(t, 1, f.envs.get("A"))
	assert.Equal(t, 1, f.agents.get("A"))
	assert.Equal(t, 5, created.resets)

	require.Len(t, f.created, 1)
	assert.Equal(t, 5, f.created[0].resets)
	assert.True(t, f.created[0].closed)
}

func TestEvaluateLayoutTruncated(t *testing.T) {
	f := newFixture(0, 0.5, 0.5)
	c := testConfig(policy.Greedy, 3)
	c.MaxSteps = 7

	res, err := f.evaluator(t, c).EvaluateLayout(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Truncated)
	assert.Equal(t, 7.0, res.MeanLength)
}

func TestEvaluateLayoutDimensionMismatch(t *testing.T) {
	f := newFixture(3, 0.5, 0.5)
	var created *fakeEnv
	f.newEnv = func(string) *fakeEnv {
		created = newFakeEnv(62, 2, 3)
		return created
	}
	f.newAgent = func(string) *fakeAgent {
		return newFakeAgent(96, 0.5, 0.5)
	}

	_, err := f.evaluator(t, testConfig(policy.Greedy, 3)).EvaluateLayout(
		context.Background(), "A")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.True(t, IsConfigError(err))
	assert.Zero(t, created.resets)

	var evalErr *EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "A", evalErr.Layout)
}

func TestEvaluateLayoutMissingCheckpoint(t *testing.T) {
	f := newFixture(3, 0.5, 0.5)
	agents := CheckpointAgents(t.TempDir(), agent.Config{Type: agent.Linear})

	e, err := NewEvaluator(testConfig(policy.Greedy, 1), agents,
		f.envFactory(), WithLogger(discard))
	require.NoError(t, err)

	_, err = e.EvaluateLayout(context.Background(), "A")
	assert.ErrorIs(t, err, ErrMissingCheckpoint)
	assert.True(t, IsConfigError(err))
}

func TestEvaluateLayoutMalformedCheckpoint(t *testing.T) {
	root := t.TempDir()
	path := checkpointer.Path(root, "A")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	file, err := os.Create(path)
	require.NoError(t, err)

	// A single layer mapping 4 observations to 3 logits cannot serve
	// 2 actions even though the declared dimensions match
	require.NoError(t, gob.NewEncoder(file).Encode(checkpointer.Params{
		Layout: "A",
		ObsDim: 4,
		ActDim: 2,
		Policy: []checkpointer.Layer{
			{Rows: 4, Cols: 3, Weights: make([]float64, 12)},
		},
	}))
	require.NoError(t, file.Close())

	f := newFixture(3, 0.5, 0.5)
	agents := CheckpointAgents(root, agent.Config{Type: agent.Linear})
	e, err := NewEvaluator(testConfig(policy.Greedy, 1), agents,
		f.envFactory(), WithLogger(discard))
	require.NoError(t, err)

	_, err = e.EvaluateLayout(context.Background(), "A")
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.ErrorIs(t, err, checkpointer.ErrMalformed)
	assert.True(t, IsConfigError(err))
}

func TestEvaluateLayoutSampledReproducible(t *testing.T) {
	actions := func(seed uint64) []int {
		f := newFixture(1, 0.5, 0.5)
		var created *fakeEnv
		f.newEnv = func(string) *fakeEnv {
			created = newFakeEnv(4, 2, 1)
			return created
		}
		c := testConfig(policy.Sampled, 50)
		c.Seed = seed

		_, err := f.evaluator(t, c).EvaluateLayout(context.Background(), "A")
		require.NoError(t, err)
		return created.taken
	}

	first := actions(42)
	assert.Equal(t, first, actions(42))
	assert.Contains(t, first, 0)
	assert.Contains(t, first, 1)
}

func TestNewEvaluatorInvalidConfig(t *testing.T) {
	f := newFixture(1, 1)
	for name, c := range map[string]Config{
		"runs":  testConfig(policy.Greedy, 0),
		"mode":  testConfig(policy.Mode("argmax"), 1),
		"steps": {Mode: policy.Greedy, NumRuns: 1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewEvaluator(c, f.agentFactory(), f.envFactory())
			assert.ErrorIs(t, err, ErrConfig)
			assert.True(t, IsConfigError(err))
		})
	}
}

func TestSummarize(t *testing.T) {
	mean, std, min, max := Summarize([]float64{2, 2, 2, 2, 2, 2, 2, 2, 2,
		20})
	assert.InDelta(t, 3.8, mean, 1e-9)
	assert.InDelta(t, 5.4, std, 1e-9)
	assert.Equal(t, 2.0, min)
	assert.Equal(t, 20.0, max)

	mean, std, _, _ = Summarize([]float64{-3})
	assert.Equal(t, -3.0, mean)
	assert.Equal(t, 0.0, std)
}
