package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/coreman2200/wordclock/internal/matrix"
)

const (
	NumLEDs   = 115
	GridCells = 110
)

var ErrUnknownLayout = errors.New("unknown layout")

// Slot names one of the LEDs outside the word grid.
type Slot int

const (
	UpperLeft Slot = iota
	UpperRight
	BottomRight
	BottomLeft
	Alarm
	SlotCount
)

func (s Slot) String() string {
	switch s {
	case UpperLeft:
		return "upper-left"
	case UpperRight:
		return "upper-right"
	case BottomRight:
		return "bottom-right"
	case BottomLeft:
		return "bottom-left"
	case Alarm:
		return "alarm"
	}
	return fmt.Sprintf("slot(%d)", int(s))
}

// Layout maps logical cells to physical strip indices for one panel wiring.
type Layout interface {
	Name() string
	// Count is the number of LEDs on the strip.
	Count() int
	// Grid maps the word cell at (x, y). ok is false outside the grid.
	Grid(x, y int) (int, bool)
	// Special maps a corner or the alarm LED.
	Special(s Slot) (int, bool)
	// Resolve maps a raw logical number (0..109 grid, 110..114 slots).
	Resolve(n int) (int, bool)
}

// Serpentine reverses every odd run of Run LEDs.
type Serpentine struct {
	Run int
}

// Index maps n to its position within a boustrophedon strip.
func (s Serpentine) Index(n int) int {
	if n/s.Run%2 == 0 {
		return n
	}
	return n/s.Run*s.Run + s.Run - 1 - n%s.Run
}

var layouts = map[string]Layout{
	Horizontal{}.Name(): Horizontal{},
	Vertical{}.Name():   Vertical{},
}

// ByName returns the layout for a configuration name.
func ByName(name string) (Layout, error) {
	l, ok := layouts[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	return l, nil
}

func Names() []string {
	out := make([]string, 0, len(layouts))
	for k := range layouts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LUT is the physical index of every grid cell, -1 where the cell is not part of the grid.
type LUT [matrix.GridRows][matrix.Columns]int

// BuildLUT bakes the grid half of a layout.
func BuildLUT(l Layout) LUT {
	var out LUT
	for y := 0; y < matrix.GridRows; y++ {
		for x := 0; x < matrix.Columns; x++ {
			out[y][x] = -1
			if n, ok := l.Grid(x, y); ok {
				out[y][x] = n
			}
		}
	}
	return out
}

func special(l Layout, s Slot) (int, bool) {
	if s < 0 || s >= SlotCount {
		return 0, false
	}
	return l.Resolve(GridCells + int(s))
}
