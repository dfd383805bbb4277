// Package sweep drives calibration patterns straight to the strip, bypassing
// the matrix, to check wiring and layout tables on a real panel.
package sweep

import (
	"fmt"

	"github.com/coreman2200/wordclock/internal/layout"
	"github.com/coreman2200/wordclock/internal/matrix"
	"github.com/coreman2200/wordclock/internal/palette"
	"github.com/coreman2200/wordclock/internal/strip"
)

type Kind string

const (
	None     Kind = ""
	Index    Kind = "index"    // one physical LED per step, in strip order
	Rows     Kind = "rows"     // one grid row per step, through the layout
	Corners  Kind = "corners"  // the four corners then the alarm LED
	Channels Kind = "channels" // whole strip red, green, blue
)

var Kinds = []Kind{Index, Rows, Corners, Channels}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown sweep %q", s)
}

type Plan struct {
	Kind  Kind
	Color palette.Color
}

type Runner struct {
	plan   Plan
	layout layout.Layout
	step   int
}

func NewRunner(plan Plan, l layout.Layout) *Runner {
	if plan.Color.IsOff() {
		plan.Color = palette.NewColor(0xFFFFFF)
	}
	return &Runner{plan: plan, layout: l}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Steps is the number of frames the plan produces.
func (r *Runner) Steps() int {
	switch r.plan.Kind {
	case Index:
		return r.layout.Count()
	case Rows:
		return matrix.GridRows
	case Corners:
		return int(layout.SlotCount)
	case Channels:
		return 3
	}
	return 0
}

// Step shows the next frame on drv. It returns false once the plan is complete.
func (r *Runner) Step(drv strip.Driver) (bool, error) {
	if r.step >= r.Steps() {
		return false, nil
	}
	drv.Clear()
	c := r.plan.Color
	switch r.plan.Kind {
	case Index:
		drv.SetPixel(r.step, c)
	case Rows:
		for x := matrix.FirstColumn; x < matrix.Columns; x++ {
			if n, ok := r.layout.Grid(x, r.step); ok {
				drv.SetPixel(n, c)
			}
		}
	case Corners:
		if n, ok := r.layout.Special(layout.Slot(r.step)); ok {
			drv.SetPixel(n, c)
		}
	case Channels:
		ch := [3]palette.Color{{R: 255}, {G: 255}, {B: 255}}[r.step]
		for i := 0; i < r.layout.Count(); i++ {
			drv.SetPixel(i, ch)
		}
	}
	r.step++
	if err := drv.Show(); err != nil {
		return false, fmt.Errorf("sweep %s step %d: %w", r.plan.Kind, r.step-1, err)
	}
	return true, nil
}
