package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/wordclock/internal/layout"
	"github.com/coreman2200/wordclock/internal/matrix"
	"github.com/coreman2200/wordclock/internal/palette"
	"github.com/coreman2200/wordclock/internal/strip"
)

var ErrBrightnessRange = errors.New("brightness out of range")

// Engine turns a screen matrix into a physical LED frame and pushes it to the strip driver.
type Engine struct {
	Layout  layout.Layout
	LUT     layout.LUT
	Palette palette.Palette
	Drv     strip.Driver

	// framebuffers, indexed by physical LED
	Buf  []palette.Color // composed target
	Prev []palette.Color // last frame pushed to the strip
	Out  []palette.Color // mixed + post

	post PostPipeline

	// metrics (last durations in ms)
	Last struct {
		RenderMS float64
		PushMS   float64
		TotalMS  float64
	}
}

// PostPipeline groups post stages; all are optional.
type PostPipeline struct {
	Limiter func([]palette.Color)
}

// NewEngine allocates buffers for a strip of count LEDs, or for the layout alone when count is 0.
// LEDs past the layout are cleared on every frame. No post stage is active.
func NewEngine(l layout.Layout, count int, p palette.Palette, drv strip.Driver) (*Engine, error) {
	if l == nil || l.Count() == 0 {
		return nil, errors.New("invalid layout")
	}
	if count == 0 {
		count = l.Count()
	}
	if count < l.Count() {
		return nil, fmt.Errorf("strip of %d LEDs is shorter than the %s layout (%d)", count, l.Name(), l.Count())
	}
	if len(p) == 0 {
		return nil, errors.New("empty palette")
	}
	if drv == nil {
		return nil, errors.New("driver is nil")
	}
	n := count
	return &Engine{
		Layout:  l,
		LUT:     layout.BuildLUT(l),
		Palette: p,
		Drv:     drv,
		Buf:     make([]palette.Color, n),
		Prev:    make([]palette.Color, n),
		Out:     make([]palette.Color, n),
	}, nil
}

// UseLimiter keeps the frame under budgetMA. A zero budget disables it.
func (e *Engine) UseLimiter(budgetMA, chanMA float64) {
	if budgetMA <= 0 {
		e.post.Limiter = nil
		return
	}
	e.post.Limiter = func(buf []palette.Color) { Limit(buf, budgetMA, chanMA) }
}

// Color validates the inputs and returns the scaled color of a lit cell.
func (e *Engine) Color(color, brightness int) (palette.Color, error) {
	if brightness < 0 || brightness > 255 {
		return palette.Off, fmt.Errorf("%w: %d not in [0,255]", ErrBrightnessRange, brightness)
	}
	c, err := e.Palette.Lookup(color)
	if err != nil {
		return palette.Off, err
	}
	return c.Scale(uint8(brightness)), nil
}

// Render draws m in the given palette color and brightness and flushes it to the strip.
func (e *Engine) Render(m matrix.Matrix, color, brightness int) error {
	c, err := e.Color(color, brightness)
	if err != nil {
		return err
	}
	start := time.Now()
	e.compose(e.Buf, m, c)
	copy(e.Out, e.Buf)
	if e.post.Limiter != nil {
		e.post.Limiter(e.Out)
	}
	e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0

	err = e.push(e.Out)
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return err
}

// Transition fades from the frame on the strip to m over steps pushes.
// steps <= 1 is a plain Render.
func (e *Engine) Transition(m matrix.Matrix, color, brightness, steps int) error {
	if steps <= 1 {
		return e.Render(m, color, brightness)
	}
	c, err := e.Color(color, brightness)
	if err != nil {
		return err
	}
	start := time.Now()
	from := append([]palette.Color(nil), e.Prev...)
	e.compose(e.Buf, m, c)
	e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0

	for k := 1; k <= steps; k++ {
		Mix(e.Out, from, e.Buf, float64(k)/float64(steps))
		if e.post.Limiter != nil {
			e.post.Limiter(e.Out)
		}
		if err := e.push(e.Out); err != nil {
			return err
		}
	}
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return nil
}

// Frame returns a copy of the last frame pushed to the strip.
func (e *Engine) Frame() []palette.Color {
	return append([]palette.Color(nil), e.Prev...)
}

func (e *Engine) compose(dst []palette.Color, m matrix.Matrix, c palette.Color) {
	for i := range dst {
		dst[i] = palette.Off
	}
	for y := 0; y < matrix.GridRows; y++ {
		for x := matrix.FirstColumn; x < matrix.Columns; x++ {
			if !m.Lit(x, y) {
				continue
			}
			if n := e.LUT[y][x]; n >= 0 && n < len(dst) {
				dst[n] = c
			}
		}
	}
	// corners and alarm
	for i := 0; i < matrix.SlotCount; i++ {
		if !m.Slot(i) {
			continue
		}
		if n, ok := e.Layout.Special(layout.Slot(i)); ok && n < len(dst) {
			dst[n] = c
		}
	}
}

func (e *Engine) push(buf []palette.Color) error {
	start := time.Now()
	e.Drv.Clear()
	for i, c := range buf {
		if !c.IsOff() {
			e.Drv.SetPixel(i, c)
		}
	}
	if err := e.Drv.Show(); err != nil {
		return fmt.Errorf("show %s: %w", e.Drv.Signature(), err)
	}
	copy(e.Prev, buf)
	e.Last.PushMS = float64(time.Since(start).Microseconds()) / 1000.0
	return nil
}
