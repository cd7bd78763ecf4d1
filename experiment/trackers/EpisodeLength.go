package trackers

import (
	"github.com/samuelfneumann/layouteval/experiment/tracker"
	"github.com/samuelfneumann/layouteval/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes.
// Note that an episode must finish for this Tracker to save its data.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length if the timestep passed to it is the
// last timestep in the episode.
func (e *EpisodeLength) Track(t timestep.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number))
	}
}

// Data returns the lengths of all finished episodes
func (e *EpisodeLength) Data() []float64 {
	return append([]float64(nil), e.episodeLengths...)
}

// Save saves the data tracked by the EpisodeLength Tracker to disk.
func (e *EpisodeLength) Save() error {
	return tracker.Save(e.filename, e.episodeLengths)
}
