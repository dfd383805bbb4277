package layout

import "github.com/coreman2200/wordclock/internal/matrix"

// verticalSlots is indexed by n-110. The strip starts at the upper-left corner LED.
var verticalSlots = [SlotCount]int{
	0,   // upper-left
	102, // upper-right
	113, // bottom-right
	11,  // bottom-left
	114, // alarm
}

// Vertical is wired in runs of 10 down each column. Three corner LEDs sit
// between runs, which shifts the grid by +1 before 10, +2 before 100 and +3 after.
type Vertical struct{}

func (Vertical) Name() string { return "vertical" }
func (Vertical) Count() int   { return NumLEDs }

func (l Vertical) Grid(x, y int) (int, bool) {
	if !matrix.InGrid(x, y) {
		return 0, false
	}
	return l.Resolve(y + (15-x)*10)
}

func (l Vertical) Special(s Slot) (int, bool) {
	return special(l, s)
}

func (Vertical) Resolve(n int) (int, bool) {
	if n < 0 || n >= NumLEDs {
		return 0, false
	}
	if n >= GridCells {
		return verticalSlots[n-GridCells], true
	}
	led := Serpentine{Run: 10}.Index(n)
	switch {
	case led < 10:
		return led + 1, true
	case led < 100:
		return led + 2, true
	default:
		return led + 3, true
	}
}
