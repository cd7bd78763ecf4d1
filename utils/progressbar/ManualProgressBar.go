// Package progressbar implements functionality of printing a progress
// bar to a terminal
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/samuelfneumann/layouteval/utils/floatutils"
)

// ManualProgressBar implements progress bar functionality that must
// be manually managed. That is, Increment() must be called whenever
// a unit of work has finished, and the updated bar is then written.
//
// ManualProgressBar is safe for concurrent use.
type ManualProgressBar struct {
	mu              sync.Mutex
	out             io.Writer
	width           float64
	maxProgress     float64
	currentProgress float64
	label           string
	bar             strings.Builder
	startTime       time.Time
}

// NewManualProgressBar returns a new ManualProgressBar which is width
// characters wide, reaches 100% after max increments and writes to out
func NewManualProgressBar(out io.Writer, width, max int) *ManualProgressBar {
	if max < 1 {
		max = 1
	}
	return &ManualProgressBar{
		out:         out,
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
	}
}

// Increment increments the internal progress counter, sets the label
// shown after the bar and displays the bar
func (p *ManualProgressBar) Increment(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
	p.label = label
	p.display()
}

// Display displays the progress bar
func (p *ManualProgressBar) Display() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.display()
}

// Close moves the output to the line after the progress bar
func (p *ManualProgressBar) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out)
}

// String returns the current progress bar without terminal control
// codes
func (p *ManualProgressBar) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.render()
}

func (p *ManualProgressBar) display() {
	fmt.Fprintf(p.out, "\r\033[K%v", p.render())
}

func (p *ManualProgressBar) render() string {
	p.bar.Reset()
	p.bar.WriteString("|")

	fraction := floatutils.Clip(p.currentProgress/p.maxProgress, 0, 1)
	filled := int(fraction * p.width)
	p.bar.WriteString(strings.Repeat("█", filled))
	p.bar.WriteString(strings.Repeat(" ", int(p.width)-filled))

	p.bar.WriteString(fmt.Sprintf("| [%.2f%% | elapsed: %v]", fraction*100,
		time.Since(p.startTime).Truncate(time.Second)))
	if p.label != "" {
		p.bar.WriteString(" " + p.label)
	}
	return p.bar.String()
}
