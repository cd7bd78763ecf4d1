package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/samuelfneumann/layouteval/agent/policy"
	"github.com/samuelfneumann/layouteval/experiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results() []experiment.LayoutResult {
	return []experiment.LayoutResult{
		{
			Layout: "cramped_room",
			Result: &experiment.AggregateResult{
				Layout:     "cramped_room",
				Rewards:    []float64{2, 20},
				Mean:       11,
				StdDev:     9,
				Min:        2,
				Max:        20,
				MeanLength: 400,
			},
		},
		{
			Layout: "forced_coordination",
			Err:    errors.New("missing checkpoint"),
		},
	}
}

func TestWriteTableGreedy(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, policy.Greedy, results(), false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"Layout", "Reward", "Steps"},
		strings.Fields(lines[0]))
	assert.Equal(t, []string{"cramped_room", "11.000", "400.0"},
		strings.Fields(lines[1]))
	assert.Contains(t, lines[2], "forced_coordination")
	assert.Contains(t, lines[2], "error: missing checkpoint")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestWriteTableSampled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, policy.Sampled, results(), false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"Layout", "Mean", "Std", "Steps"},
		strings.Fields(lines[0]))
	assert.Equal(t, []string{"cramped_room", "11.000", "9.000", "400.0"},
		strings.Fields(lines[1]))
}

func TestWriteTableLongError(t *testing.T) {
	short := results()
	long := results()
	long[1].Err = errors.New(strings.Repeat("parameter file is corrupt ", 6))

	var shortBuf, longBuf bytes.Buffer
	require.NoError(t, WriteTable(&shortBuf, policy.Sampled, short, false))
	require.NoError(t, WriteTable(&longBuf, policy.Sampled, long, false))

	shortLines := strings.Split(shortBuf.String(), "\n")
	longLines := strings.Split(longBuf.String(), "\n")
	require.Greater(t, len(longLines), 2)

	// Header and successful rows keep their widths
	assert.Equal(t, shortLines[0], longLines[0])
	assert.Equal(t, shortLines[1], longLines[1])
	assert.Equal(t, []string{"forced_coordination", "-", "-", "-", "error:"},
		strings.Fields(longLines[2])[:5])
}

func TestWriteTableColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, policy.Greedy, results(), true))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "cramped_room")
}

func TestWriteChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, "Evaluation", policy.Sampled,
		results()))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "cramped_room")
	assert.NotContains(t, html, "forced_coordination")
}

func TestWriteChartNoResults(t *testing.T) {
	var buf bytes.Buffer
	err := WriteChart(&buf, "Evaluation", policy.Greedy, results()[1:])
	assert.Error(t, err)
}
