package gridworld

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownLayout is returned when a layout name cannot be resolved
var ErrUnknownLayout = errors.New("unknown layout")

// Layout file extension used when loading layouts from a directory
const LayoutExt = ".layout"

// Layout cell characters
const (
	wall   = 'X'
	floor  = ' '
	goal   = 'G'
	start1 = '1'
	start2 = '2'
)

// cell is a (row, column) position in a layout
type cell struct {
	r, c int
}

// Layout is a named, parsed map of a cooperative gridworld. Layouts
// are immutable after parsing and may be shared between environments.
type Layout struct {
	name   string
	rows   int
	cols   int
	walls  []bool
	goals  []cell
	starts [2]cell
}

// builtin layouts, indexed by name
var builtin = map[string]string{
	"cramped_room": `
XXXXXXX
X1   GX
X  X  X
XG   2X
XXXXXXX`,

	"asymmetric_advantages": `
XXXXXXXXX
X1  X  GX
X   X   X
XG  X  2X
XXXXXXXXX`,

	"coordination_ring": `
XXXXXXX
X1   GX
X XXX X
XG   2X
XXXXXXX`,

	"forced_coordination": `
XXXXXXX
X1X  GX
X X   X
XGX  2X
XXXXXXX`,

	"counter_circuit": `
XXXXXXXXXX
X1   G  GX
X XXXXXX X
XG      2X
XXXXXXXXXX`,
}

// Layouts returns the sorted names of all builtin layouts
func Layouts() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LayoutNamed returns the layout with the given name. If dir is not
// empty, a file dir/<name>.layout takes precedence over the builtin
// layout of the same name.
func LayoutNamed(name, dir string) (*Layout, error) {
	if dir != "" {
		path := filepath.Join(dir, name+LayoutExt)
		data, err := os.ReadFile(path)
		if err == nil {
			return ParseLayout(name, string(data))
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("layoutNamed: could not read %v: %w",
				path, err)
		}
	}

	grid, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("layoutNamed: %w: %q", ErrUnknownLayout, name)
	}
	return ParseLayout(name, grid)
}

// ParseLayout parses a layout from its textual grid. Every row must
// have the same width. The grid uses 'X' for walls, ' ' for floor,
// 'G' for goal cells, and '1' and '2' for the starting cells of each
// agent. At least one goal per agent is required.
func ParseLayout(name, grid string) (*Layout, error) {
	lines := strings.Split(strings.Trim(grid, "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}
	if len(lines) == 0 || len(lines[0]) == 0 {
		return nil, fmt.Errorf("parseLayout: layout %q is empty", name)
	}

	l := &Layout{name: name, rows: len(lines), cols: len(lines[0])}
	l.walls = make([]bool, l.rows*l.cols)
	seen := [2]bool{}

	for r, line := range lines {
		if len(line) != l.cols {
			return nil, fmt.Errorf("parseLayout: layout %q row %d has "+
				"width %d, want %d", name, r, len(line), l.cols)
		}

		for c, ch := range line {
			switch ch {
			case wall:
				l.walls[r*l.cols+c] = true
			case floor:
			case goal:
				l.goals = append(l.goals, cell{r, c})
			case start1, start2:
				i := int(ch - start1)
				if seen[i] {
					return nil, fmt.Errorf("parseLayout: layout %q has "+
						"more than one start for agent %c", name, ch)
				}
				seen[i] = true
				l.starts[i] = cell{r, c}
			default:
				return nil, fmt.Errorf("parseLayout: layout %q has "+
					"illegal cell %q at (%d, %d)", name, ch, r, c)
			}
		}
	}

	if !seen[0] || !seen[1] {
		return nil, fmt.Errorf("parseLayout: layout %q needs a start for "+
			"both agents", name)
	}
	if len(l.goals) < 2 {
		return nil, fmt.Errorf("parseLayout: layout %q needs at least 2 "+
			"goals, have %d", name, len(l.goals))
	}

	return l, nil
}

// Name returns the name of the layout
func (l *Layout) Name() string {
	return l.name
}

// Dims returns the rows and columns of the layout
func (l *Layout) Dims() (r, c int) {
	return l.rows, l.cols
}

// Goals returns the number of goal cells in the layout
func (l *Layout) Goals() int {
	return len(l.goals)
}

// ObservationDim returns the length of observation vectors in an
// environment using the layout: the normalized position of both
// agents followed by the normalized offset of each agent to each goal.
func (l *Layout) ObservationDim() int {
	return 4 + 4*len(l.goals)
}

// blocked returns whether a position cannot be occupied
func (l *Layout) blocked(p cell) bool {
	if p.r < 0 || p.r >= l.rows || p.c < 0 || p.c >= l.cols {
		return true
	}
	return l.walls[p.r*l.cols+p.c]
}
