package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/samuelfneumann/layouteval/agent/policy"
	"github.com/samuelfneumann/layouteval/experiment/trackers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunEpisodeGreedy(t *testing.T) {
	e := newFakeEnv(4, 2, 3)
	a := newFakeAgent(4, 0.9, 0.1)
	r := NewRunner(100, discard)

	ep, err := r.RunEpisode(context.Background(), a, e, policy.NewGreedy(),
		true)
	require.NoError(t, err)

	assert.Equal(t, 3.0, ep.Reward)
	assert.Equal(t, 3, ep.Steps)
	assert.False(t, ep.Truncated)
	assert.False(t, ep.HasValue)
	assert.Len(t, ep.Frames, 3)
	assert.Equal(t, []int{0, 0, 0}, e.taken)
	assert.Equal(t, 1, a.resets)
}

func TestRunEpisodeWithoutFrames(t *testing.T) {
	e := newFakeEnv(4, 2, 5)
	a := newFakeAgent(4, 0.5, 0.5)
	r := NewRunner(100, discard)

	ep, err := r.RunEpisode(context.Background(), a, e, policy.NewSampled(3),
		false)
	require.NoError(t, err)

	assert.Equal(t, 5, ep.Steps)
	assert.Nil(t, ep.Frames)
	assert.Zero(t, e.renders)
}

func TestRunEpisodeTruncated(t *testing.T) {
	e := newFakeEnv(4, 2, 0)
	a := newFakeAgent(4, 0.2, 0.8)
	r := NewRunner(5, discard)

	ep, err := r.RunEpisode(context.Background(), a, e, policy.NewGreedy(),
		true)
	require.NoError(t, err)

	assert.True(t, ep.Truncated)
	assert.Equal(t, 5, ep.Steps)
	assert.Equal(t, 5.0, ep.Reward)
	assert.Len(t, ep.Frames, 5)
	assert.Equal(t, []int{1, 1, 1, 1, 1}, e.taken)
}

func TestRunEpisodeEndsOnStepBound(t *testing.T) {
	// An episode ended by the environment on the last allowed step is
	// not truncated
	e := newFakeEnv(4, 2, 5)
	a := newFakeAgent(4, 0.2, 0.8)
	r := NewRunner(5, discard)

	ep, err := r.RunEpisode(context.Background(), a, e, policy.NewGreedy(),
		false)
	require.NoError(t, err)
	assert.False(t, ep.Truncated)
	assert.Equal(t, 5, ep.Steps)
}

func TestRunEpisodeDimensionMismatch(t *testing.T) {
	e := newFakeEnv(62, 6, 3)
	a := newFakeAgent(96, 1, 0, 0, 0, 0, 0)
	r := NewRunner(100, discard)

	_, err := r.RunEpisode(context.Background(), a, e, policy.NewGreedy(),
		true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.True(t, IsConfigError(err))

	var evalErr *EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, "runEpisode", evalErr.Op)

	assert.Zero(t, e.resets)
	assert.Zero(t, e.steps)
	assert.Zero(t, a.calls)
}

func TestRunEpisodeActionCountMismatch(t *testing.T) {
	e := newFakeEnv(4, 3, 3)
	a := newFakeAgent(4, 0.5, 0.5)
	r := NewRunner(100, discard)

	_, err := r.RunEpisode(context.Background(), a, e, policy.NewGreedy(),
		false)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Zero(t, e.resets)
}

func TestRunEpisodeInvalidDistribution(t *testing.T) {
	for name, probs := range map[string][]float64{
		"sum":      {0.5, 0.6},
		"negative": {1.5, -0.5},
	} {
		t.Run(name, func(t *testing.T) {
			e := newFakeEnv(4, 2, 3)
			a := newFakeAgent(4, probs...)
			r := NewRunner(100, discard)

			_, err := r.RunEpisode(context.Background(), a, e,
				policy.NewGreedy(), false)
			assert.ErrorIs(t, err, ErrInvalidDistribution)
			assert.Zero(t, e.steps)
		})
	}
}

func TestRunEpisodeCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newFakeEnv(4, 2, 3)
	a := newFakeAgent(4, 0.9, 0.1)
	r := NewRunner(100, discard)

	ep, err := r.RunEpisode(ctx, a, e, policy.NewGreedy(), false)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsCancelled(err))
	assert.Equal(t, Episode{}, ep)
	assert.Zero(t, e.resets)
}

func TestRunEpisodeCancelledMidEpisode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := newFakeEnv(4, 2, 0)
	a := newFakeAgent(4, 0.9, 0.1)
	a.hook = func(calls int) {
		if calls == 3 {
			cancel()
		}
	}
	r := NewRunner(1000, discard)

	ep, err := r.RunEpisode(ctx, a, e, policy.NewGreedy(), true)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, Episode{}, ep)
	assert.Equal(t, 3, e.steps)
}

func TestRunEpisodeValue(t *testing.T) {
	e := newFakeEnv(4, 2, 2)
	a := valuedAgent{newFakeAgent(4, 0.9, 0.1), 7.5}
	r := NewRunner(100, discard)

	ep, err := r.RunEpisode(context.Background(), a, e, policy.NewGreedy(),
		false)
	require.NoError(t, err)
	assert.True(t, ep.HasValue)
	assert.Equal(t, 7.5, ep.Value)
}

func TestRunEpisodeTrackers(t *testing.T) {
	e := newFakeEnv(4, 2, 3)
	e.reward = func(_, step int) float64 { return float64(step) }
	a := newFakeAgent(4, 0.9, 0.1)

	ret := trackers.NewReturn("")
	length := trackers.NewEpisodeLength("")
	r := NewRunner(100, discard, ret, length)

	for i := 0; i < 2; i++ {
		_, err := r.RunEpisode(context.Background(), a, e, policy.NewGreedy(),
			false)
		require.NoError(t, err)
	}

	// Truncated episodes are tracked as finished at the step bound
	r.MaxSteps = 2
	e.length = 0
	_, err := r.RunEpisode(context.Background(), a, e, policy.NewGreedy(),
		false)
	require.NoError(t, err)

	assert.Equal(t, []float64{6, 6, 3}, ret.Data())
	assert.Equal(t, []float64{3, 3, 2}, length.Data())
}

func TestRunEpisodeInvalidStepBound(t *testing.T) {
	r := NewRunner(0, discard)
	_, err := r.RunEpisode(context.Background(), newFakeAgent(4, 1),
		newFakeEnv(4, 1, 1), policy.NewGreedy(), false)
	assert.ErrorIs(t, err, ErrConfig)
}
