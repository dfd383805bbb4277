package layout

import "github.com/coreman2200/wordclock/internal/matrix"

// horizontalSlots is indexed by n-110.
var horizontalSlots = [SlotCount]int{
	111, // upper-left
	112, // upper-right
	113, // bottom-right
	110, // bottom-left
	114, // alarm
}

// Horizontal is wired in runs of 11 along each row, starting top left.
type Horizontal struct{}

func (Horizontal) Name() string { return "horizontal" }
func (Horizontal) Count() int   { return NumLEDs }

func (l Horizontal) Grid(x, y int) (int, bool) {
	if !matrix.InGrid(x, y) {
		return 0, false
	}
	return l.Resolve(15 - x + y*11)
}

func (l Horizontal) Special(s Slot) (int, bool) {
	return special(l, s)
}

func (Horizontal) Resolve(n int) (int, bool) {
	if n < 0 || n >= NumLEDs {
		return 0, false
	}
	if n < GridCells {
		return Serpentine{Run: 11}.Index(n), true
	}
	return horizontalSlots[n-GridCells], true
}
