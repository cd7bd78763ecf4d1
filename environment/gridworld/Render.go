package gridworld

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// CellSize is the width and height in pixels of a single rendered cell
const CellSize = 40

var (
	floorColour = color.RGBA{236, 232, 220, 255}
	wallColour  = color.RGBA{92, 84, 76, 255}
	goalColour  = color.RGBA{230, 180, 40, 255}
	agentColour = [2]color.Color{
		color.RGBA{40, 100, 200, 255},
		color.RGBA{200, 60, 50, 255},
	}
)

// Render draws the current state of the GridWorld
func (g *GridWorld) Render() (image.Image, error) {
	if g.currentStep.Observation == nil {
		return nil, fmt.Errorf("render: environment must be reset before " +
			"rendering")
	}

	l := g.current
	dc := gg.NewContext(l.cols*CellSize, l.rows*CellSize)
	dc.SetColor(floorColour)
	dc.Clear()

	// Walls
	for r := 0; r < l.rows; r++ {
		for c := 0; c < l.cols; c++ {
			if l.walls[r*l.cols+c] {
				drawCell(dc, cell{r, c}, 0)
			}
		}
	}
	dc.SetColor(wallColour)
	dc.Fill()

	// Goals
	for _, goal := range l.goals {
		drawCell(dc, goal, 4)
	}
	dc.SetColor(goalColour)
	dc.Fill()

	// Agents
	for i, p := range g.positions {
		x := float64(p.c*CellSize) + CellSize/2
		y := float64(p.r*CellSize) + CellSize/2
		dc.DrawCircle(x, y, CellSize/3)
		dc.SetColor(agentColour[i])
		dc.Fill()
	}

	return dc.Image(), nil
}

// drawCell adds the rectangle of a cell, shrunk by inset pixels on
// each side, to the current path
func drawCell(dc *gg.Context, p cell, inset float64) {
	x := float64(p.c*CellSize) + inset
	y := float64(p.r*CellSize) + inset
	size := CellSize - 2*inset
	dc.DrawRectangle(x, y, size, size)
}
