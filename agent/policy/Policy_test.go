package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("GREEDY")
	require.NoError(t, err)
	assert.Equal(t, Greedy, m)

	m, err = ParseMode("sampled")
	require.NoError(t, err)
	assert.Equal(t, Sampled, m)

	_, err = ParseMode("argmax")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	s, err := New(Greedy, 0)
	require.NoError(t, err)
	assert.Equal(t, Greedy, s.Mode())

	s, err = New(Sampled, 0)
	require.NoError(t, err)
	assert.Equal(t, Sampled, s.Mode())

	_, err = New(Mode("argmax"), 0)
	assert.Error(t, err)
}

func TestGreedySelect(t *testing.T) {
	s := NewGreedy()

	for _, test := range []struct {
		probs []float64
		want  int
	}{
		{[]float64{0.9, 0.1}, 0},
		{[]float64{0.1, 0.2, 0.7}, 2},
		{[]float64{0.25, 0.25, 0.25, 0.25}, 0},
		{[]float64{0.1, 0.45, 0.45}, 1},
		{[]float64{1}, 0},
	} {
		for i := 0; i < 3; i++ {
			a, err := s.Select(test.probs)
			require.NoError(t, err)
			assert.Equal(t, test.want, a, "probs %v", test.probs)
		}
	}

	_, err := s.Select(nil)
	assert.Error(t, err)
}

func TestSampledSelect(t *testing.T) {
	probs := []float64{0.2, 0.0, 0.5, 0.3}

	draw := func(seed uint64) []int {
		s := NewSampled(seed)
		actions := make([]int, 500)
		for i := range actions {
			a, err := s.Select(probs)
			require.NoError(t, err)
			actions[i] = a
		}
		return actions
	}

	actions := draw(11)
	assert.Equal(t, actions, draw(11))

	counts := make([]int, len(probs))
	for _, a := range actions {
		require.True(t, a >= 0 && a < len(probs))
		counts[a]++
	}
	assert.Zero(t, counts[1], "actions with zero probability are never drawn")
	assert.Greater(t, counts[2], counts[0])

	_, err := NewSampled(0).Select(nil)
	assert.Error(t, err)
}

func TestSampledDeterministicDistribution(t *testing.T) {
	s := NewSampled(3)
	for i := 0; i < 100; i++ {
		a, err := s.Select([]float64{0, 0, 1})
		require.NoError(t, err)
		assert.Equal(t, 2, a)
	}
}
