package palette

import (
	"errors"
	"fmt"
)

var ErrInvalidColorIndex = errors.New("invalid color index")

// Palette is a fixed table of selectable colors.
type Palette []Color

// Default is the color table offered by the settings menu, in menu order.
var Default = Palette{
	NewColor(0xFFFFFF), // white
	NewColor(0xFF0000), // red
	NewColor(0xFF4040), // red 25
	NewColor(0xFF8080), // red 50
	NewColor(0xFF8000), // orange
	NewColor(0xFFFF00), // yellow
	NewColor(0xFFFF40), // yellow 25
	NewColor(0xFFFF80), // yellow 50
	NewColor(0x80FF00), // green yellow
	NewColor(0x00FF00), // green
	NewColor(0x40FF40), // green 25
	NewColor(0x80FF80), // green 50
	NewColor(0x00FF80), // mint green
	NewColor(0x00FFFF), // cyan
	NewColor(0x40FFFF), // cyan 25
	NewColor(0x80FFFF), // cyan 50
	NewColor(0x0080FF), // light blue
	NewColor(0x0000FF), // blue
	NewColor(0x4040FF), // blue 25
	NewColor(0x8080FF), // blue 50
	NewColor(0x8000FF), // violet
	NewColor(0xFF00FF), // magenta
	NewColor(0xFF40FF), // magenta 25
	NewColor(0xFF80FF), // magenta 50
	NewColor(0xFF0080), // pink
}

var names = []string{
	"white", "red", "red_25", "red_50", "orange",
	"yellow", "yellow_25", "yellow_50", "greenyellow",
	"green", "green_25", "green_50", "mintgreen",
	"cyan", "cyan_25", "cyan_50", "lightblue",
	"blue", "blue_25", "blue_50", "violet",
	"magenta", "magenta_25", "magenta_50", "pink",
}

// Lookup returns entry i or ErrInvalidColorIndex.
func (p Palette) Lookup(i int) (Color, error) {
	if !p.Valid(i) {
		return Off, fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidColorIndex, i, len(p))
	}
	return p[i], nil
}

// Valid reports whether i selects an entry.
func (p Palette) Valid(i int) bool {
	return i >= 0 && i < len(p)
}

// Name returns the menu name of a Default palette index.
func Name(i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("color(%d)", i)
	}
	return names[i]
}

// Index resolves a menu name back to its Default palette index.
func Index(name string) (int, bool) {
	for i, n := range names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
