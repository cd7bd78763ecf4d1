// Package render records sequences of rendered frames as animated
// images
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
)

// DefaultDelay is the default delay between frames, in 100ths of a
// second
const DefaultDelay int = 10

var (
	// ErrDestination reports that frames cannot be written to their
	// destination
	ErrDestination = errors.New("invalid destination")

	// ErrNoFrames reports that there are no frames to record
	ErrNoFrames = errors.New("no frames")
)

// GIF records frames as an animated GIF
type GIF struct {
	// Delay is the delay between frames in 100ths of a second
	Delay int

	// LoopCount is the number of times the animation loops. Zero loops
	// forever and -1 shows the frames once.
	LoopCount int

	// CreateDirs determines whether missing parent directories of the
	// destination are created
	CreateDirs bool
}

// NewGIF returns a new GIF recorder with the default frame delay
func NewGIF(createDirs bool) *GIF {
	return &GIF{Delay: DefaultDelay, CreateDirs: createDirs}
}

// Encode converts frames to a paletted animated GIF
func (g *GIF) Encode(frames []image.Image) (*gif.GIF, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("encode: %w", ErrNoFrames)
	}

	delay := g.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	anim := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: g.LoopCount,
	}
	for i, frame := range frames {
		if frame == nil {
			return nil, fmt.Errorf("encode: frame %d is nil", i)
		}
		bounds := frame.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, bounds, frame, bounds.Min)

		anim.Image[i] = paletted
		anim.Delay[i] = delay
	}
	return anim, nil
}

// Save saves frames as an animated GIF at path. If the directory of
// path does not exist and CreateDirs is false, an error wrapping
// ErrDestination is returned.
func (g *GIF) Save(frames []image.Image, path string) error {
	anim, err := g.Encode(frames)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) || !g.CreateDirs {
			return fmt.Errorf("save: %w: %v", ErrDestination, err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save: %w: %v", ErrDestination, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("save: %w: %v is not a directory", ErrDestination,
			dir)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %w: %v", ErrDestination, err)
	}
	defer file.Close()

	if err := gif.EncodeAll(file, anim); err != nil {
		return fmt.Errorf("save: could not encode gif: %v", err)
	}
	return file.Close()
}
